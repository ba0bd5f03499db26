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
	"io"
	"os"

	"github.com/pkg/errors"
)

// Load loads an instruction stream from file fileName.
func Load(fileName string) ([]byte, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Load")
	}
	defer f.Close()
	return ReadCode(f)
}

// ReadCode reads an instruction stream from r until EOF. It fails if the
// stream is larger than MaxCodeSize.
func ReadCode(r io.Reader) ([]byte, error) {
	code, err := io.ReadAll(io.LimitReader(r, MaxCodeSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	if len(code) > MaxCodeSize {
		return nil, errors.Errorf("instruction stream larger than %d bytes", MaxCodeSize)
	}
	return code, nil
}
