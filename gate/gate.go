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

// Package gate runs a VM program as a password gate: the program output is
// captured and the gate opens only if it contains an expected marker.
//
// The marker check is independent from, and stronger than, the VM's own
// success flag. A program may halt successfully without printing the marker,
// and the caller decides which of the two it trusts.
package gate

import (
	"bytes"

	"github.com/memoria-core/memoria/internal/log"
	"github.com/memoria-core/memoria/vm"
	"github.com/pkg/errors"
)

// Result is the outcome of a gate run.
type Result struct {
	Output   []byte       // everything the program wrote
	VM       *vm.Instance // final machine state
	Unlocked bool         // Output contains the marker
}

// Success returns the VM's own verdict, i.e. register 0 is 1.
func (r *Result) Success() bool {
	return r.VM != nil && r.VM.Success()
}

// Run executes code with its output redirected to a buffer, then looks for
// marker in the captured output. The options are applied before the capture
// sink, which replaces any Output option.
//
// An empty marker never unlocks the gate.
func Run(code []byte, marker string, opts ...vm.Option) (*Result, error) {
	var out bytes.Buffer
	opts = append(opts[:len(opts):len(opts)], vm.Output(&out))
	i, err := vm.New(code, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "gate setup")
	}
	res := &Result{VM: i}
	err = i.Run()
	res.Output = out.Bytes()
	log.Debug("vm halted",
		"halt", i.Halt.String(),
		"r0", i.Registers[0],
		"instructions", i.InstructionCount(),
		"output", len(res.Output))
	if err != nil {
		return res, errors.Wrap(err, "gate run")
	}
	res.Unlocked = marker != "" && bytes.Contains(res.Output, []byte(marker))
	if res.Unlocked != i.Success() {
		log.Warn("marker check and VM flag disagree", "unlocked", res.Unlocked, "success", i.Success())
	}
	return res, nil
}
