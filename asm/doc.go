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

// Package asm provides utility functions to assemble and disassemble memoria
// VM code.
//
// Supported assembler mnemonics:
//
//	Operands are written in stream order. reg is a register name (r0 to r3),
//	addr an 8 bits memory address, imm a 32 bits value and target a 16 bits
//	code offset. flag is the VM condition flag.
//
//	opcode	asm	alias		operands	description
//	------	---	-----		--------	-----------------------------------------------
//	0x01	ldi	load		reg imm		reg = imm
//	0x04	stm	store		addr reg	memory[addr] = low byte of reg
//	0x05	add			reg1 reg2	reg1 += reg2 (wraps around)
//	0x06	sub			reg1 reg2	reg1 -= reg2 (wraps around)
//	0x07	xor			reg1 reg2	reg1 ^= reg2
//	0x09	cmpm			addr reg	flag = memory[addr] == low byte of reg
//	0x10	cmp			reg1 reg2	flag = reg1 == reg2
//	0x11	jf	jmpifnot	target		jump to target if flag is false
//	0x12	cmpgt	le		reg imm		flag = !(reg > imm), that is reg <= imm
//	0x20	getc	in		reg		read one input byte into reg, halt on end of input
//	0x21	putc	out		reg		write the low byte of reg
//	0x30	time			reg		reg = monotonic clock in milliseconds
//	0xfe	ok				halt, success (r0 = 1)
//	0xff	fail				halt, failure (r0 = 0)
//
// Mnemonics and register names are case insensitive. Operands are separated by
// white space; commas are accepted as separators too:
//
//	ldi r0, 'A'
//	putc r0
//	ok
//
// Comments:
//
// Comments are placed between parentheses, i.e. '(' and ')'. They may span
// multiple lines and cannot be nested:
//
//	( this is a valid comment )
//	getc r1	(read one char)
//
// Literals:
//
// Integer operands accept any Go integer literal (see strconv.ParseInt), such as
// 42, 0x2a, 0o52 or 0b101010, Go character literals between single quotes ('A',
// '\n', '\x00') and named constants. Negative immediates are stored in two's
// complement: "ldi r1 -1" loads 0xffffffff.
//
// Tokens are made of letters, digits and the characters _ : . ' - + \. Other
// punctuation must be escaped inside character literals, e.g. '\x28' for '('.
// A space is written ' '.
//
// Labels:
//
// Labels are defined by prefixing them with a colon (:) and can be used in any
// target or imm operand (without the ':' prefix). Forward references are fine:
//
//		getc r1
//		ldi r2 'y'
//		cmp r1 r2
//		jf no		( jump to no if r1 != 'y' )
//		ok
//	:no	fail
//
// Label and constant names must start with a letter or an underscore.
//
// Assembler directives:
//
//	.equ <IDENTIFIER> <value>
//
// defines a constant value. The value must be an integer value, named constant
// or character literal.
//
//	.org <value>
//
// Will place the next instruction at the given offset. Skipped bytes are set to
// 0, which is not a valid opcode.
//
//	.dat <value>
//
// Will emit the given value as a single raw byte. The value must be in the
// range [-128, 255].
//
// Disassembly:
//
// Disassemble produces the same syntax, using canonical mnemonics and decimal
// operands, so that the output of DisassembleAll (without the address column)
// assembles back to the same stream. Bytes that are not valid opcodes are
// shown as .dat directives.
package asm
