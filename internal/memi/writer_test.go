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

package memi_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/memoria-core/memoria/internal/memi"
)

type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("disk full")
	}
	w.n--
	return len(p), nil
}

func TestErrWriter(t *testing.T) {
	var b bytes.Buffer
	ew := memi.NewErrWriter(&b)
	io.WriteString(ew, "hello")
	if ew.Err != nil || b.String() != "hello" {
		t.Fatalf("got %q, %v", b.String(), ew.Err)
	}
	if memi.NewErrWriter(ew) != ew {
		t.Fatal("NewErrWriter did not reuse existing ErrWriter")
	}
}

func TestErrWriter_sticky(t *testing.T) {
	ew := memi.NewErrWriter(&failWriter{n: 1})
	if _, err := ew.Write([]byte("a")); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := ew.Write([]byte("b")); err == nil {
		t.Fatal("expected error")
	}
	n, err := ew.WriteString("c")
	if n != 0 || err == nil || err != ew.Err {
		t.Fatalf("error not sticky: %d, %v", n, err)
	}
}
