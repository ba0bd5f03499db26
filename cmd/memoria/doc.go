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

// The memoria command assembles the chunks of a memoria program, runs the
// resulting bytecode as a password gate and reports whether access was granted.
//
// Usage:
//
//	-asm file
//		  assemble and run source file instead of the manifest
//	-bin file
//		  run plain bytecode file instead of the manifest
//	-chunks list
//		  comma separated list of chunks to assemble, in order (default all)
//	-debug
//		  enable debug diagnostics
//	-disasm
//		  print disassembly and exit
//	-dump
//		  dump machine state upon exit
//	-log file
//		  write log to file instead of stderr
//	-manifest file
//		  load chunks from manifest file (default "memoria.toml")
//	-marker string
//		  override the success marker
//	-max int
//		  maximum number of instructions to execute (0 = manifest setting)
//	-noraw
//		  disable raw terminal IO
//	-trace
//		  trace executed instructions to stderr
//	-with filename
//		  Add filename to the input list (can be specified multiple times)
//
// -manifest: a TOML file listing the program chunks, the XOR key they are
// encoded with and the marker that the program output must contain for the
// gate to open. See package github.com/memoria-core/memoria/manifest.
//
// -chunks: by default, all chunks are appended in manifest order. A partial or
// reordered selection builds a different program, which usually fails.
//
// -noraw: upon startup, memoria switches the terminal to raw, no echo mode
// unless stdin has been redirected. This flag disables this behavior. In raw
// mode, CTRL-D ends the input.
//
// -with: input files are fed to the program before stdin, in order of
// appearance on the command line.
//
// -debug: enables debug logging and prints a full stacktrace and a dump of the
// machine state should the run fail with an error.
//
// The exit status is 0 if and only if the program output contains the marker.
package main
