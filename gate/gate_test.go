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

package gate_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/memoria-core/memoria/gate"
	"github.com/memoria-core/memoria/manifest"
	"github.com/memoria-core/memoria/vm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flag = "bsctf{Tears_in_the_Code_0B_Aoi}"

func coreProgram(t *testing.T) []byte {
	t.Helper()
	m, err := manifest.Load("../manifest/testdata/memoria.toml")
	require.NoError(t, err)
	code, err := m.Bytecode()
	require.NoError(t, err)
	return code
}

// clock returns the given timestamps in order, then keeps returning the last.
func clock(ts ...uint64) vm.ClockFunc {
	return func() uint64 {
		v := ts[0]
		if len(ts) > 1 {
			ts = ts[1:]
		}
		return v
	}
}

func TestRun_core(t *testing.T) {
	code := coreProgram(t)
	tests := []struct {
		name     string
		input    string
		clock    vm.ClockFunc
		halt     vm.Halt
		output   string
		unlocked bool
	}{
		{"granted", "CORE-0B-COMPLETE\n", clock(1000), vm.HaltOK, flag, true},
		{"any_confirm_key", "CORE-0B-COMPLETEx", clock(1000), vm.HaltOK, flag, true},
		{"at_deadline", "CORE-0B-COMPLETE\n", clock(0, 500), vm.HaltOK, flag, true},
		{"too_slow", "CORE-0B-COMPLETE\n", clock(0, 501), vm.HaltEndOfStream, "", false},
		{"wrong_char", "CORE-0B-COMPLETX\n", clock(1000), vm.HaltEndOfStream, "", false},
		{"lowercase", "core-0b-complete\n", clock(1000), vm.HaltEndOfStream, "", false},
		{"short", "CORE-0B", clock(1000), vm.HaltInputExhausted, "", false},
		{"no_confirm", "CORE-0B-COMPLETE", clock(1000), vm.HaltInputExhausted, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := gate.Run(code, "bsctf", vm.Input(strings.NewReader(tt.input)), vm.Clock(tt.clock))
			require.NoError(t, err)
			assert.Equal(t, tt.halt, res.VM.Halt)
			assert.Equal(t, tt.output, string(res.Output))
			assert.Equal(t, tt.unlocked, res.Unlocked)
			assert.Equal(t, tt.unlocked, res.Success())
		})
	}
}

func TestRun_captureWins(t *testing.T) {
	var other bytes.Buffer
	code := []byte{0x01, 0x00, 'o', 0x00, 0x00, 0x00, 0x21, 0x00, 0x01, 0x00, 'k', 0x00, 0x00, 0x00, 0x21, 0x00, 0xFE}
	res, err := gate.Run(code, "ok", vm.Output(&other))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Output))
	assert.Zero(t, other.Len())
	assert.True(t, res.Unlocked)
	assert.True(t, res.Success())
}

func TestRun_markerOnly(t *testing.T) {
	// prints the marker then fails
	code := []byte{0x01, 0x01, 'k', 0x00, 0x00, 0x00, 0x21, 0x01, 0xFF}
	res, err := gate.Run(code, "k")
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	assert.False(t, res.Success())

	res, err = gate.Run(code, "")
	require.NoError(t, err)
	assert.False(t, res.Unlocked)
}

func TestRun_errors(t *testing.T) {
	_, err := gate.Run(make([]byte, vm.MaxCodeSize+1), "x")
	assert.ErrorContains(t, err, "gate setup")

	_, err = gate.Run(nil, "x", vm.MaxInstructions(-1))
	assert.Error(t, err)

	boom := errors.New("boom")
	res, err := gate.Run([]byte{0xFE}, "x", vm.Trace(func(*vm.Instance, uint16) { panic(boom) }))
	assert.Equal(t, boom, errors.Cause(err))
	require.NotNil(t, res)
	assert.False(t, res.Unlocked)
	assert.Equal(t, vm.HaltIOError, res.VM.Halt)
}
