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

package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/memoria-core/memoria/chunk"
	"github.com/memoria-core/memoria/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	m, err := manifest.Load("testdata/memoria.toml")
	require.NoError(t, err)

	assert.Equal(t, "memoria", m.Program.Name)
	assert.Equal(t, uint8(0xAF), m.Program.Key)
	assert.Equal(t, "bsctf", m.Program.Marker)
	assert.Zero(t, m.Program.MaxInstructions)
	assert.Equal(t, []string{"garden", "noise", "key", "hourglass"}, m.Names())
	assert.True(t, filepath.IsAbs(m.Dir))

	code, err := m.Bytecode()
	require.NoError(t, err)
	assert.Len(t, code, 597)
	// ldi r3, 0 / time r0
	assert.Equal(t, []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x00, 0x30, 0x00}, code[:8])
	// ok, fail
	assert.Equal(t, []byte{0xfe, 0xff}, code[len(code)-2:])

	garden, err := m.Chunk("garden")
	require.NoError(t, err)
	assert.Len(t, garden, 100)
	assert.Equal(t, code[:100], garden)

	partial, err := m.Bytecode("garden", "key")
	require.NoError(t, err)
	assert.Len(t, partial, 280)
	assert.Equal(t, garden, partial[:100])

	_, err = m.Bytecode("garden", "missing")
	assert.ErrorContains(t, err, `unknown chunk "missing"`)
}

func TestParse_defaults(t *testing.T) {
	m, err := manifest.Parse([]byte(`
[[chunk]]
name = "a"
data = "0xae 0xaf"
`), ".")
	require.NoError(t, err)
	assert.Equal(t, uint8(chunk.DefaultKey), m.Program.Key)
	assert.Equal(t, manifest.DefaultMarker, m.Program.Marker)

	m, err = manifest.Parse([]byte(`
[program]
key = 0
marker = "FLAG{"
max-instructions = 1000
`), ".")
	require.NoError(t, err)
	assert.Zero(t, m.Program.Key)
	assert.Equal(t, "FLAG{", m.Program.Marker)
	assert.Equal(t, int64(1000), m.Program.MaxInstructions)
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		msg  string
	}{
		{"syntax", "[program", "parse error"},
		{"unknown key", "[program]\ncolor = \"red\"", "unknown keys: program.color"},
		{"key range", "[program]\nkey = 256", "parse error"},
		{"no name", "[[chunk]]\ndata = \"00\"", "chunk #1: missing name"},
		{"duplicate", "[[chunk]]\nname = \"a\"\ndata = \"00\"\n[[chunk]]\nname = \"a\"\ndata = \"01\"", "chunk a: duplicate name"},
		{"two sources", "[[chunk]]\nname = \"a\"\ndata = \"00\"\nfile = \"a.bin\"", "exactly one of data, file or source"},
		{"no source", "[[chunk]]\nname = \"a\"", "exactly one of data, file or source"},
		{"negative limit", "[program]\nmax-instructions = -1", "invalid max-instructions -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tt.toml), ".")
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestBytecode_sources(t *testing.T) {
	dir := t.TempDir()
	// "ldi r0 'A'" obfuscated with key 0x11
	require.NoError(t, os.WriteFile(filepath.Join(dir, "load.bin"),
		chunk.Encode(0x11, []byte{0x01, 0x00, 0x41, 0x00, 0x00, 0x00}), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tail.asm"), []byte("putc r0 ok"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memoria.toml"), []byte(`
[program]
key = 0x11

[[chunk]]
name = "load"
file = "load.bin"

[[chunk]]
name = "tail"
source = "tail.asm"

[[chunk]]
name = "broken"
data = "zz"
`), 0644))

	m, err := manifest.Load(filepath.Join(dir, "memoria.toml"))
	require.NoError(t, err)

	code, err := m.Bytecode("load", "tail")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x41, 0x00, 0x00, 0x00, 0x21, 0x00, 0xfe}, code)

	tail, err := m.Chunk("tail")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x21, 0x00, 0xfe}, tail)

	_, err = m.Bytecode()
	assert.ErrorContains(t, err, "chunk broken")

	_, err = manifest.Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "cannot read manifest")
}
