// This file is part of memoria - https://github.com/memoria-core/memoria
//
// Copyright 2025 The memoria Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chunk assembles VM instruction streams out of obfuscated chunks.
//
// Programs are shipped as a sequence of chunks, each one XOR-ed with a single
// byte key. The application decides which chunks to append, in which order,
// and hands the decoded concatenation to the VM.
package chunk

import (
	"bytes"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// DefaultKey is the key used when none is configured.
const DefaultKey = 0xAF

// Decode returns a copy of src with every byte XOR-ed with key.
func Decode(key byte, src []byte) []byte {
	dst := make([]byte, len(src))
	for i, b := range src {
		dst[i] = b ^ key
	}
	return dst
}

// Encode obfuscates plain code with key. Encoding and decoding are the same
// operation.
func Encode(key byte, code []byte) []byte {
	return Decode(key, code)
}

// Join decodes the given chunks with key and concatenates them.
func Join(key byte, chunks ...[]byte) []byte {
	b := NewBuilder(key)
	for _, c := range chunks {
		b.Append(c)
	}
	return b.Bytes()
}

// Builder accumulates decoded chunks. The zero value uses key 0.
type Builder struct {
	key byte
	buf bytes.Buffer
	n   int
}

// NewBuilder returns a Builder decoding chunks with key.
func NewBuilder(key byte) *Builder {
	return &Builder{key: key}
}

// Append decodes an obfuscated chunk and appends it.
func (b *Builder) Append(encoded []byte) *Builder {
	b.buf.Grow(len(encoded))
	for _, c := range encoded {
		b.buf.WriteByte(c ^ b.key)
	}
	b.n++
	return b
}

// AppendPlain appends code that is not obfuscated.
func (b *Builder) AppendPlain(code []byte) *Builder {
	b.buf.Write(code)
	b.n++
	return b
}

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int { return b.buf.Len() }

// Chunks returns the number of chunks appended so far.
func (b *Builder) Chunks() int { return b.n }

// Bytes returns a copy of the accumulated instruction stream.
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// Reset discards all chunks appended so far.
func (b *Builder) Reset() {
	b.buf.Reset()
	b.n = 0
}

// ParseHex parses a hex dump. It accepts C style arrays ("0xae, 0xac,"),
// white space separated byte pairs ("ae ac") and contiguous hex strings
// ("aeac"). Comments starting with // or # run to the end of the line. Braces
// are ignored so that a whole C initializer can be pasted.
func ParseHex(s string) ([]byte, error) {
	var digits strings.Builder
	for n, line := range strings.Split(s, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return unicode.IsSpace(r) || r == ',' || r == '{' || r == '}'
		})
		for _, f := range fields {
			if len(f) > 2 && (f[:2] == "0x" || f[:2] == "0X") {
				f = f[2:]
				if len(f) > 2 {
					return nil, errors.Errorf("line %d: %q is not a single byte", n+1, "0x"+f)
				}
				if len(f) == 1 {
					f = "0" + f
				}
			}
			if len(f)%2 != 0 {
				return nil, errors.Errorf("line %d: odd number of hex digits in %q", n+1, f)
			}
			digits.WriteString(f)
		}
	}
	b, err := hex.DecodeString(digits.String())
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex data")
	}
	return b, nil
}

// FormatHex formats data as a C style array body, 10 bytes per line, the
// format accepted by ParseHex.
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, c := range data {
		switch {
		case i == 0:
		case i%10 == 0:
			sb.WriteString(",\n")
		default:
			sb.WriteString(", ")
		}
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString([]byte{c}))
	}
	return sb.String()
}
