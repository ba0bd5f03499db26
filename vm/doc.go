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

// Package vm implements the memoria register-memory virtual machine.
//
// The machine has four 32 bits registers, 256 bytes of memory, a 16 bits
// instruction pointer and a single condition flag. It executes a flat byte
// stream of variable length instructions: one opcode byte followed by its
// operand bytes, multi-byte operands being little-endian.
//
// A program reports success by executing the HALT_OK opcode, which sets
// register 0 to 1. Every other way of stopping the machine (HALT_FAIL, running
// off the end of the stream, an unknown opcode, a truncated operand, an invalid
// register index or exhausted input) sets register 0 to 0. The Halt field
// records which of these happened, but callers should only rely on Success (or
// register 0): all failures are equivalent as far as programs are concerned.
//
// Character I/O goes through an io.Writer (WRITE_CHAR) and a stack of
// io.Readers (READ_CHAR), configured with the Output and Input options. Run
// only returns an error when the host side of this I/O fails.
//
// Note that the PC is not advanced in a single place: each opcode consumes its
// own operands, and jumps overwrite the IP directly.
package vm
