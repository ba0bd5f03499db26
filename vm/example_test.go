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

package vm_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/memoria-core/memoria/asm"
	"github.com/memoria-core/memoria/vm"
)

func ExampleExecute() {
	code := []byte{
		0x01, 0x00, 'H', 0x00, 0x00, 0x00, // ldi r0, 'H'
		0x21, 0x00, // putc r0
		0x01, 0x00, '\n', 0x00, 0x00, 0x00, // ldi r0, '\n'
		0x21, 0x00, // putc r0
		0xFE, // ok
	}
	i, err := vm.Execute(code, vm.Output(os.Stdout))
	if err != nil {
		panic(err)
	}
	fmt.Println(i.Halt, i.Registers[0])

	// Output:
	// H
	// ok 1
}

// A single character password check. The program compares its input against
// a byte stored in memory and only halts successfully on a match.
func ExampleInstance_Run() {
	code, err := asm.Assemble("example", strings.NewReader(`
		ldi r1, 'x'
		stm 0, r1
		getc r2
		cmpm 0, r2
		jf nope
		ok
	:nope
		fail`))
	if err != nil {
		panic(err)
	}
	for _, in := range []string{"x", "y", ""} {
		i, err := vm.New(code, vm.Input(strings.NewReader(in)))
		if err != nil {
			panic(err)
		}
		if err = i.Run(); err != nil {
			panic(err)
		}
		fmt.Printf("%q: %v, success=%t\n", in, i.Halt, i.Success())
	}

	// Output:
	// "x": ok, success=true
	// "y": fail, success=false
	// "": input exhausted, success=false
}
