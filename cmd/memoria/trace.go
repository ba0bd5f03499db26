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

package main

import (
	"fmt"
	"io"

	"github.com/memoria-core/memoria/asm"
	"github.com/memoria-core/memoria/internal/memi"
	"github.com/memoria-core/memoria/vm"
)

// traceTo returns a trace function that writes each instruction about to be
// executed to w, along with the registers and flag.
func traceTo(w io.Writer) vm.TraceFunc {
	ew := memi.NewErrWriter(w)
	return func(i *vm.Instance, pc uint16) {
		if ew.Err != nil {
			return
		}
		fmt.Fprintf(ew, "%6d\t", pc)
		asm.Disassemble(i.Code, int(pc), ew)
		r := i.Registers
		fmt.Fprintf(ew, "\t; r0=%x r1=%x r2=%x r3=%x flag=%t\n", r[0], r[1], r[2], r[3], i.Flag)
	}
}
