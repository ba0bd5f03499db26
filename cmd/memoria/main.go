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
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/memoria-core/memoria/asm"
	"github.com/memoria-core/memoria/gate"
	"github.com/memoria-core/memoria/internal/log"
	"github.com/memoria-core/memoria/manifest"
	"github.com/memoria-core/memoria/vm"
	"github.com/pkg/errors"
)

type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(s string) error { *f = append(*f, s); return nil }
func (f *fileList) Get() interface{}   { return *f }

var (
	manifestFile string
	chunkList    string
	asmFile      string
	binFile      string
	marker       string
	maxIns       int64
	disasm       bool
	trace        bool
	dump         bool
	noRawIO      bool
	debug        bool
	logFile      string
	withFiles    fileList
)

// program is the bytecode to run along with its gate settings.
type program struct {
	name   string
	code   []byte
	marker string
	maxIns int64
}

func loadProgram() (*program, error) {
	p := &program{marker: manifest.DefaultMarker}
	switch {
	case asmFile != "":
		f, err := os.Open(asmFile)
		if err != nil {
			return nil, errors.Wrap(err, "open assembly source")
		}
		defer f.Close()
		if p.code, err = asm.Assemble(asmFile, f); err != nil {
			return nil, err
		}
		p.name = asmFile
	case binFile != "":
		code, err := vm.Load(binFile)
		if err != nil {
			return nil, err
		}
		p.name, p.code = binFile, code
	default:
		m, err := manifest.Load(manifestFile)
		if err != nil {
			return nil, err
		}
		var names []string
		if chunkList != "" {
			names = strings.Split(chunkList, ",")
		}
		if p.code, err = m.Bytecode(names...); err != nil {
			return nil, err
		}
		p.name, p.marker, p.maxIns = m.Program.Name, m.Program.Marker, m.Program.MaxInstructions
	}
	if marker != "" {
		p.marker = marker
	}
	if maxIns > 0 {
		p.maxIns = maxIns
	}
	log.Info("program loaded", "name", p.name, "chunks", chunkList, "size", len(p.code), "marker", p.marker)
	return p, nil
}

func setupIO() (raw bool, tearDown func()) {
	if noRawIO || !isatty.IsTerminal(os.Stdin.Fd()) {
		return false, nil
	}
	tearDown, err := setRawIO()
	if err != nil {
		log.Warn("raw terminal mode unavailable", "error", err)
		return false, nil
	}
	return true, tearDown
}

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		log.Close()
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	if i != nil {
		i.Dump(os.Stderr)
	}
	log.Close()
	os.Exit(1)
}

func main() {
	var err error
	var res *gate.Result

	stdout := bufio.NewWriter(os.Stdout)

	defer func() {
		stdout.Flush()
		var i *vm.Instance
		if res != nil {
			i = res.VM
		}
		if err == nil && dump && i != nil {
			err = i.Dump(os.Stdout)
		}
		atExit(i, err)
		log.Close()
		if res == nil || !res.Unlocked {
			os.Exit(1)
		}
	}()

	flag.StringVar(&manifestFile, "manifest", "memoria.toml", "load chunks from manifest `file`")
	flag.StringVar(&chunkList, "chunks", "", "comma separated `list` of chunks to assemble, in order (default all)")
	flag.StringVar(&asmFile, "asm", "", "assemble and run source `file` instead of the manifest")
	flag.StringVar(&binFile, "bin", "", "run plain bytecode `file` instead of the manifest")
	flag.Var(&withFiles, "with", "Add `filename` to the input list (can be specified multiple times)")
	flag.StringVar(&marker, "marker", "", "override the success marker")
	flag.Int64Var(&maxIns, "max", 0, "maximum number of instructions to execute (0 = manifest setting)")
	flag.BoolVar(&disasm, "disasm", false, "print disassembly and exit")
	flag.BoolVar(&trace, "trace", false, "trace executed instructions to stderr")
	flag.BoolVar(&dump, "dump", false, "dump machine state upon exit")
	flag.BoolVar(&noRawIO, "noraw", false, "disable raw terminal IO")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	flag.StringVar(&logFile, "log", "", "write log to `file` instead of stderr")

	flag.Parse()

	log.SetDebug(debug)
	if logFile != "" {
		if err = log.SetFileOutput(logFile); err != nil {
			return
		}
	}

	p, err := loadProgram()
	if err != nil {
		return
	}
	if disasm {
		err = asm.DisassembleAll(p.code, 0, stdout)
		if err == nil {
			stdout.Flush()
			log.Close()
			os.Exit(0)
		}
		return
	}

	rawtty, ioTearDownFn := setupIO()
	if ioTearDownFn != nil {
		defer ioTearDownFn()
	}

	var opts []vm.Option
	if rawtty {
		// with the terminal in raw mode, we need to manually handle CTRL-D
		opts = append(opts, vm.Input(eofReader{os.Stdin}))
	} else {
		opts = append(opts, vm.Input(bufio.NewReader(os.Stdin)))
	}
	// append -with files to input stack in reverse order so that they load
	// in order of appearance on the command line.
	for n := len(withFiles) - 1; n >= 0; n-- {
		var f *os.File
		f, err = os.Open(withFiles[n])
		if err != nil {
			return
		}
		opts = append(opts, vm.Input(bufio.NewReader(f)))
	}
	if p.maxIns > 0 {
		opts = append(opts, vm.MaxInstructions(p.maxIns))
	}
	if trace {
		opts = append(opts, vm.Trace(traceTo(os.Stderr)))
	}

	fmt.Fprint(stdout, "--- CORE SYSTEM ACCESS ---\nPassword: ")
	stdout.Flush()

	res, err = gate.Run(p.code, p.marker, opts...)
	if res != nil {
		stdout.Write(res.Output)
	}
	if err != nil {
		return
	}
	if res.Unlocked {
		fmt.Fprintln(stdout, "\nACCESS GRANTED")
	} else {
		fmt.Fprintf(stdout, "\nAUTHENTICATION FAILED (%v)\n", res.VM.Halt)
	}
}

// eofReader maps a CTRL-D key press to io.EOF.
type eofReader struct {
	r io.Reader
}

func (e eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	for k := 0; k < n; k++ {
		if p[k] == 4 {
			return k, io.EOF
		}
	}
	return n, err
}
