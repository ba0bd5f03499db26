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
	"encoding/binary"

	"github.com/pkg/errors"
)

// stop halts the VM with the given cause and sets register 0 accordingly.
func (i *Instance) stop(h Halt) {
	i.Halt = h
	if h == HaltOK {
		i.Registers[0] = 1
	} else {
		i.Registers[0] = 0
	}
}

// operands returns the next n bytes of the stream and advances the IP past
// them. It returns nil if the stream is too short.
func (i *Instance) operands(n int) []byte {
	end := int(i.IP) + n
	if end > len(i.Code) {
		return nil
	}
	b := i.Code[i.IP:end]
	i.IP = uint16(end)
	return b
}

func validReg(b ...byte) bool {
	for _, r := range b {
		if r >= RegisterCount {
			return false
		}
	}
	return true
}

// Run starts execution of the VM at the current IP and returns when it halts.
//
// Run returns nil whenever the program stops, successfully or not: use
// Success or Registers[0] to tell the two apart. A non-nil error means that the
// host I/O failed (Halt is then HaltIOError) or that the VM hit an internal
// error. In both cases register 0 is 0.
//
// If the output writer has a Flush method, it is called before returning.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			i.stop(HaltIOError)
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "recovered error @ip=%d/%d", i.IP, len(i.Code))
			default:
				panic(e)
			}
		}
		if ferr := i.flush(); err == nil && ferr != nil {
			i.stop(HaltIOError)
			err = ferr
		}
	}()
	i.Halt = Running
	i.insCount = 0
	for {
		if int(i.IP) >= len(i.Code) {
			i.stop(HaltEndOfStream)
			return nil
		}
		if i.maxIns > 0 && i.insCount >= i.maxIns {
			i.stop(HaltInstructionLimit)
			return nil
		}
		if i.trace != nil {
			i.trace(i, i.IP)
		}
		op := Opcode(i.Code[i.IP])
		i.IP++
		i.insCount++

		// all valid opcodes other than the halts have operands
		var args []byte
		if n := op.Size() - 1; n > 0 {
			if args = i.operands(n); args == nil {
				i.stop(HaltTruncated)
				return nil
			}
		}

		switch op {
		case OpLoadImm:
			if !validReg(args[0]) {
				i.stop(HaltBadRegister)
				return nil
			}
			i.Registers[args[0]] = binary.LittleEndian.Uint32(args[1:])
		case OpStoreMem:
			if !validReg(args[1]) {
				i.stop(HaltBadRegister)
				return nil
			}
			i.Memory[args[0]] = uint8(i.Registers[args[1]])
		case OpAdd, OpSub, OpXor, OpCmpReg:
			r1, r2 := args[0], args[1]
			if !validReg(r1, r2) {
				i.stop(HaltBadRegister)
				return nil
			}
			switch op {
			case OpAdd:
				i.Registers[r1] += i.Registers[r2]
			case OpSub:
				i.Registers[r1] -= i.Registers[r2]
			case OpXor:
				i.Registers[r1] ^= i.Registers[r2]
			default:
				i.Flag = i.Registers[r1] == i.Registers[r2]
			}
		case OpCmpMem:
			if !validReg(args[1]) {
				i.stop(HaltBadRegister)
				return nil
			}
			i.Flag = i.Memory[args[0]] == uint8(i.Registers[args[1]])
		case OpJmpIfNot:
			if !i.Flag {
				i.IP = binary.LittleEndian.Uint16(args)
			}
		case OpCmpGtImm:
			if !validReg(args[0]) {
				i.stop(HaltBadRegister)
				return nil
			}
			// flag is set when reg <= imm, so that JMP_IF_NOT branches on reg > imm
			i.Flag = !(i.Registers[args[0]] > binary.LittleEndian.Uint32(args[1:]))
		case OpReadChar:
			if !validReg(args[0]) {
				i.stop(HaltBadRegister)
				return nil
			}
			c, ok, err := i.readChar()
			if err != nil {
				i.stop(HaltIOError)
				return err
			}
			if !ok {
				i.stop(HaltInputExhausted)
				return nil
			}
			i.Registers[args[0]] = uint32(c)
		case OpWriteChar:
			if !validReg(args[0]) {
				i.stop(HaltBadRegister)
				return nil
			}
			if err = i.writeChar(uint8(i.Registers[args[0]])); err != nil {
				i.stop(HaltIOError)
				return err
			}
		case OpTimestamp:
			if !validReg(args[0]) {
				i.stop(HaltBadRegister)
				return nil
			}
			i.Registers[args[0]] = uint32(i.clock())
		case OpHaltOK:
			i.stop(HaltOK)
			return nil
		case OpHaltFail:
			i.stop(HaltFail)
			return nil
		default:
			i.stop(HaltInvalidOpcode)
			return nil
		}
	}
}
