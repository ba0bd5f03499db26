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

// Opcode is an instruction opcode.
type Opcode byte

// Instruction set.
const (
	OpLoadImm   Opcode = 0x01 // reg, imm32: registers[reg] = imm32
	OpStoreMem  Opcode = 0x04 // addr, reg: memory[addr] = byte(registers[reg])
	OpAdd       Opcode = 0x05 // reg1, reg2: registers[reg1] += registers[reg2]
	OpSub       Opcode = 0x06 // reg1, reg2: registers[reg1] -= registers[reg2]
	OpXor       Opcode = 0x07 // reg1, reg2: registers[reg1] ^= registers[reg2]
	OpCmpMem    Opcode = 0x09 // addr, reg: flag = memory[addr] == byte(registers[reg])
	OpCmpReg    Opcode = 0x10 // reg1, reg2: flag = registers[reg1] == registers[reg2]
	OpJmpIfNot  Opcode = 0x11 // target: if !flag { ip = target }
	OpCmpGtImm  Opcode = 0x12 // reg, imm32: flag = !(registers[reg] > imm32)
	OpReadChar  Opcode = 0x20 // reg: registers[reg] = getc()
	OpWriteChar Opcode = 0x21 // reg: putc(byte(registers[reg]))
	OpTimestamp Opcode = 0x30 // reg: registers[reg] = monotonic milliseconds
	OpHaltOK    Opcode = 0xFE
	OpHaltFail  Opcode = 0xFF
)

// Operand is the kind of an instruction operand.
type Operand uint8

// Operand kinds.
const (
	Reg    Operand = iota + 1 // register index, 1 byte
	Addr                      // memory address, 1 byte
	Imm32                     // 32 bits immediate, little-endian
	Target                    // absolute jump target, 16 bits little-endian
)

var operandSizes = [...]int{Reg: 1, Addr: 1, Imm32: 4, Target: 2}

// Size returns the encoded size of the operand in bytes.
func (o Operand) Size() int {
	if int(o) >= len(operandSizes) {
		return 0
	}
	return operandSizes[o]
}

func (o Operand) String() string {
	switch o {
	case Reg:
		return "reg"
	case Addr:
		return "addr"
	case Imm32:
		return "imm32"
	case Target:
		return "target"
	}
	return "?"
}

type opInfo struct {
	name string
	args []Operand
}

var opcodes = [256]opInfo{
	OpLoadImm:   {"ldi", []Operand{Reg, Imm32}},
	OpStoreMem:  {"stm", []Operand{Addr, Reg}},
	OpAdd:       {"add", []Operand{Reg, Reg}},
	OpSub:       {"sub", []Operand{Reg, Reg}},
	OpXor:       {"xor", []Operand{Reg, Reg}},
	OpCmpMem:    {"cmpm", []Operand{Addr, Reg}},
	OpCmpReg:    {"cmp", []Operand{Reg, Reg}},
	OpJmpIfNot:  {"jf", []Operand{Target}},
	OpCmpGtImm:  {"cmpgt", []Operand{Reg, Imm32}},
	OpReadChar:  {"getc", []Operand{Reg}},
	OpWriteChar: {"putc", []Operand{Reg}},
	OpTimestamp: {"time", []Operand{Reg}},
	OpHaltOK:    {"ok", nil},
	OpHaltFail:  {"fail", nil},
}

// Valid reports whether op is part of the instruction set.
func (op Opcode) Valid() bool {
	return opcodes[op].name != ""
}

// String returns the canonical assembler mnemonic of op.
func (op Opcode) String() string {
	if !op.Valid() {
		return "invalid"
	}
	return opcodes[op].name
}

// Operands returns the operand layout of op, in stream order. The returned
// slice must not be modified.
func (op Opcode) Operands() []Operand {
	return opcodes[op].args
}

// Size returns the encoded size of a full instruction, opcode included. It
// returns 1 for invalid opcodes.
func (op Opcode) Size() int {
	n := 1
	for _, a := range opcodes[op].args {
		n += a.Size()
	}
	return n
}

// Opcodes returns all valid opcodes in ascending order.
func Opcodes() []Opcode {
	var ops []Opcode
	for i := range opcodes {
		if op := Opcode(i); op.Valid() {
			ops = append(ops, op)
		}
	}
	return ops
}
