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

package asm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/memoria-core/memoria/internal/memi"
	"github.com/memoria-core/memoria/vm"
)

var aliases = map[string]vm.Opcode{
	"load":     vm.OpLoadImm,
	"store":    vm.OpStoreMem,
	"jmpifnot": vm.OpJmpIfNot,
	"le":       vm.OpCmpGtImm,
	"in":       vm.OpReadChar,
	"out":      vm.OpWriteChar,
}

var mnemonics = make(map[string]vm.Opcode)

func init() {
	for _, op := range vm.Opcodes() {
		mnemonics[op.String()] = op
	}
	for k, op := range aliases {
		mnemonics[k] = op
	}
}

// Error is a single assembly error.
type Error struct {
	Pos scanner.Position
	Msg string
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return e.Pos.String() + ": " + e.Msg
}

// ErrAsm is the error type returned by Assemble. It is a list of up to 10
// errors in order of appearance.
type ErrAsm []Error

func (e ErrAsm) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "\n")
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting instruction stream and error if any.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value.
func Assemble(name string, r io.Reader) (code []byte, err error) {
	p := newParser()
	code, errs := p.Parse(name, r)
	if len(errs) > 0 {
		return nil, errs
	}
	return code, nil
}

// Disassemble writes a disassembly of the instruction at position pc in code
// to the specified io.Writer and returns the position of the next instruction
// and any write error.
func Disassemble(code []byte, pc int, w io.Writer) (next int, err error) {
	ew := memi.NewErrWriter(w)

	op := vm.Opcode(code[pc])
	if !op.Valid() {
		fmt.Fprintf(ew, ".dat 0x%02x", code[pc])
		return pc + 1, ew.Err
	}
	io.WriteString(ew, op.String())
	pc++
	for n, arg := range op.Operands() {
		if n == 0 {
			ew.Write([]byte{' '})
		} else {
			io.WriteString(ew, ", ")
		}
		sz := arg.Size()
		if pc+sz > len(code) {
			io.WriteString(ew, "???")
			return len(code), ew.Err
		}
		b := code[pc : pc+sz]
		switch arg {
		case vm.Reg:
			io.WriteString(ew, "r"+strconv.Itoa(int(b[0])))
		case vm.Addr:
			io.WriteString(ew, strconv.Itoa(int(b[0])))
		case vm.Imm32:
			io.WriteString(ew, strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b)), 10))
		case vm.Target:
			io.WriteString(ew, strconv.Itoa(int(binary.LittleEndian.Uint16(b))))
		}
		pc += sz
	}
	return pc, ew.Err
}

// DisassembleAll writes a disassembly of all instructions in code to the
// specified io.Writer, one per line, prefixed with their address. The base
// argument specifies the real address of the first byte (code[0]). It will
// return any write error.
func DisassembleAll(code []byte, base int, w io.Writer) error {
	ew := memi.NewErrWriter(w)
	for pc := 0; pc < len(code); {
		fmt.Fprintf(ew, "%6d\t", base+pc)
		pc, _ = Disassemble(code, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
