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

package vm

import (
	"io"

	"github.com/pkg/errors"
)

type flusher interface {
	Flush() error
}

// byteReaderWrapper wraps a basic reader into a io.ByteReader and io.Closer.
// It reads one byte at a time so that no input is consumed beyond what the
// program asked for.
type byteReaderWrapper struct {
	io.Reader
	b [1]byte
}

func (r *byteReaderWrapper) ReadByte() (byte, error) {
	for {
		n, err := r.Reader.Read(r.b[:])
		if n > 0 {
			// a trailing EOF will be reported by the next call
			return r.b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (r *byteReaderWrapper) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newByteReader(r io.Reader) io.ByteReader {
	switch br := r.(type) {
	case nil:
		return nil
	case io.ByteReader:
		return br
	default:
		return &byteReaderWrapper{Reader: r}
	}
}

type multiByteReader struct {
	readers []io.ByteReader
}

func (mr *multiByteReader) ReadByte() (c byte, err error) {
	for len(mr.readers) > 0 {
		c, err = mr.readers[0].ReadByte()
		if err != io.EOF {
			return c, err
		}
		// discard the reader and optionally close it
		if cl, ok := mr.readers[0].(io.Closer); ok {
			cl.Close()
		}
		mr.readers = mr.readers[1:]
	}
	return 0, io.EOF
}

func (mr *multiByteReader) pushReader(r io.Reader) {
	mr.readers = append([]io.ByteReader{newByteReader(r)}, mr.readers...)
}

// PushInput sets r as the current input for the VM. When this reader reaches
// EOF, the previously pushed reader will be used.
func (i *Instance) PushInput(r io.Reader) {
	if r == nil {
		return
	}
	// dont use a multi reader unless necessary
	switch in := i.input.(type) {
	case nil: // no input yet, single assign
		i.input = newByteReader(r)
	case *multiByteReader:
		in.pushReader(r)
	default:
		i.input = &multiByteReader{[]io.ByteReader{newByteReader(r), i.input}}
	}
}

// readChar reads the next input byte. ok is false on end of input; err is only
// set for actual read failures.
func (i *Instance) readChar() (c byte, ok bool, err error) {
	if i.input == nil {
		return 0, false, nil
	}
	c, err = i.input.ReadByte()
	switch err {
	case nil:
		return c, true, nil
	case io.EOF:
		return 0, false, nil
	default:
		return 0, false, errors.Wrap(err, "READ_CHAR")
	}
}

func (i *Instance) writeChar(c byte) error {
	if i.output == nil {
		return nil
	}
	var err error
	if bw, ok := i.output.(io.ByteWriter); ok {
		err = bw.WriteByte(c)
	} else {
		_, err = i.output.Write([]byte{c})
	}
	return errors.Wrap(err, "WRITE_CHAR")
}

func (i *Instance) flush() error {
	if f, ok := i.output.(flusher); ok {
		return errors.Wrap(f.Flush(), "output flush")
	}
	return nil
}
