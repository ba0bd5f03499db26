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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEOFReader(t *testing.T) {
	r := eofReader{strings.NewReader("ab\x04cd")}
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(b))
}

func resetFlags() {
	manifestFile, chunkList, asmFile, binFile, marker, maxIns = "", "", "", "", "", 0
}

func TestLoadProgram(t *testing.T) {
	defer resetFlags()

	manifestFile = "../../manifest/testdata/memoria.toml"
	p, err := loadProgram()
	require.NoError(t, err)
	assert.Equal(t, "memoria", p.name)
	assert.Equal(t, "bsctf", p.marker)
	assert.Len(t, p.code, 597)

	chunkList, marker, maxIns = "garden,key", "FLAG", 10
	p, err = loadProgram()
	require.NoError(t, err)
	assert.Len(t, p.code, 280)
	assert.Equal(t, "FLAG", p.marker)
	assert.Equal(t, int64(10), p.maxIns)

	chunkList = "garden,nope"
	_, err = loadProgram()
	assert.Error(t, err)
}

func TestLoadProgram_sources(t *testing.T) {
	defer resetFlags()
	dir := t.TempDir()

	asmFile = filepath.Join(dir, "p.asm")
	require.NoError(t, os.WriteFile(asmFile, []byte("ldi r0, 'A' putc r0 ok"), 0o644))
	p, err := loadProgram()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x41, 0x00, 0x00, 0x00, 0x21, 0x00, 0xFE}, p.code)
	assert.Equal(t, "bsctf", p.marker)

	require.NoError(t, os.WriteFile(asmFile, []byte("ldi r9, 1"), 0o644))
	_, err = loadProgram()
	assert.ErrorContains(t, err, "expected register")

	asmFile = ""
	binFile = filepath.Join(dir, "p.bin")
	require.NoError(t, os.WriteFile(binFile, []byte{0xFE}, 0o644))
	p, err = loadProgram()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE}, p.code)
}
