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
	"fmt"
	"io"
	"time"

	"github.com/memoria-core/memoria/internal/memi"
	"github.com/pkg/errors"
)

const (
	// RegisterCount is the number of general purpose registers.
	RegisterCount = 4
	// MemorySize is the size of the data memory in bytes.
	MemorySize = 256
	// MaxCodeSize is the largest instruction stream addressable by the 16 bits
	// instruction pointer.
	MaxCodeSize = 0xFFFF
)

// Halt describes why the VM stopped.
type Halt int

// Halt causes. All of them except HaltOK leave register 0 set to 0.
const (
	Running              Halt = iota // not halted yet
	HaltOK                           // HALT_OK executed
	HaltFail                         // HALT_FAIL executed
	HaltEndOfStream                  // IP ran past the end of the stream
	HaltInvalidOpcode                // unknown opcode
	HaltInputExhausted               // READ_CHAR hit the end of input
	HaltTruncated                    // operand bytes past the end of the stream
	HaltBadRegister                  // register index out of range
	HaltInstructionLimit             // MaxInstructions reached
	HaltIOError                      // host I/O failure, Run returns the error
)

var haltNames = [...]string{
	Running:              "running",
	HaltOK:               "ok",
	HaltFail:             "fail",
	HaltEndOfStream:      "end of stream",
	HaltInvalidOpcode:    "invalid opcode",
	HaltInputExhausted:   "input exhausted",
	HaltTruncated:        "truncated instruction",
	HaltBadRegister:      "bad register",
	HaltInstructionLimit: "instruction limit",
	HaltIOError:          "i/o error",
}

func (h Halt) String() string {
	if h < 0 || int(h) >= len(haltNames) {
		return fmt.Sprintf("Halt(%d)", int(h))
	}
	return haltNames[h]
}

// OK returns true if h is the success halt.
func (h Halt) OK() bool { return h == HaltOK }

// ClockFunc returns a monotonic time in milliseconds.
type ClockFunc func() uint64

var epoch = time.Now()

// MonotonicClock is the default clock. It returns the number of milliseconds
// elapsed since the process started, as measured by the monotonic clock.
func MonotonicClock() uint64 {
	return uint64(time.Since(epoch) / time.Millisecond)
}

// TraceFunc is called before the execution of each instruction. pc is the
// address of the opcode about to be executed.
type TraceFunc func(i *Instance, pc uint16)

// Instance represents a VM instance.
type Instance struct {
	Registers [RegisterCount]uint32
	Memory    [MemorySize]uint8
	IP        uint16 // Instruction Pointer
	Flag      bool   // condition flag
	Code      []byte // instruction stream, never written to
	Halt      Halt
	insCount  int64
	maxIns    int64
	input     io.ByteReader
	output    io.Writer
	clock     ClockFunc
	trace     TraceFunc
}

// Option interface
type Option func(*Instance) error

// Input pushes the given Reader on top of the input stack. When this reader
// reaches EOF, the previously pushed reader will be used.
func Input(r io.Reader) Option {
	return func(i *Instance) error { i.PushInput(r); return nil }
}

// Output sets the sink for WRITE_CHAR. A nil writer discards output.
func Output(w io.Writer) Option {
	return func(i *Instance) error {
		i.output = w
		return nil
	}
}

// Clock sets the time source for the TIMESTAMP instruction. The default is
// MonotonicClock.
func Clock(c ClockFunc) Option {
	return func(i *Instance) error {
		if c == nil {
			return errors.New("nil clock")
		}
		i.clock = c
		return nil
	}
}

// MaxInstructions limits the number of instructions a single Run may execute.
// When the limit is reached, the VM halts with HaltInstructionLimit. The
// default, 0, means no limit.
func MaxInstructions(n int64) Option {
	return func(i *Instance) error {
		if n < 0 {
			return errors.Errorf("invalid instruction limit %d", n)
		}
		i.maxIns = n
		return nil
	}
}

// Trace sets a function to be called before each instruction.
func Trace(fn TraceFunc) Option {
	return func(i *Instance) error { i.trace = fn; return nil }
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new VM instance for the given instruction stream. The machine
// state is zeroed. The code slice is not copied and must not be modified
// while the VM runs.
func New(code []byte, opts ...Option) (*Instance, error) {
	if len(code) > MaxCodeSize {
		return nil, errors.Errorf("instruction stream too large: %d bytes, max %d", len(code), MaxCodeSize)
	}
	i := &Instance{
		Code:  code,
		clock: MonotonicClock,
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// Execute creates a fresh instance for code and runs it to completion.
func Execute(code []byte, opts ...Option) (*Instance, error) {
	i, err := New(code, opts...)
	if err != nil {
		return nil, err
	}
	return i, i.Run()
}

// Reset clears the machine state: registers, memory, IP, flag and halt cause.
// Code and I/O settings are preserved.
func (i *Instance) Reset() {
	i.Registers = [RegisterCount]uint32{}
	i.Memory = [MemorySize]uint8{}
	i.IP = 0
	i.Flag = false
	i.Halt = Running
	i.insCount = 0
}

// Success returns true if the program halted with HALT_OK, i.e. register 0 is
// 1 after Run.
func (i *Instance) Success() bool {
	return i.Registers[0] == 1
}

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Dump writes a human readable dump of the machine state to w.
func (i *Instance) Dump(w io.Writer) error {
	ew := memi.NewErrWriter(w)
	fmt.Fprintf(ew, "ip=%04x flag=%t halt=%s instructions=%d\n", i.IP, i.Flag, i.Halt, i.insCount)
	for r, v := range i.Registers {
		if r > 0 {
			ew.Write([]byte{' '})
		}
		fmt.Fprintf(ew, "r%d=%08x", r, v)
	}
	ew.Write([]byte{'\n'})
	for row := 0; row < MemorySize; row += 16 {
		fmt.Fprintf(ew, "%02x: % x\n", row, i.Memory[row:row+16])
	}
	return ew.Err
}
