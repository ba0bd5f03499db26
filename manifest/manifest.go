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

// Package manifest handles memoria.toml program configuration.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/memoria-core/memoria/asm"
	"github.com/memoria-core/memoria/chunk"
	"github.com/pkg/errors"
)

// DefaultMarker is the output marker used when the manifest does not set one.
const DefaultMarker = "bsctf"

// Manifest represents a memoria.toml program configuration.
type Manifest struct {
	Program Program `toml:"program"`
	Chunks  []Chunk `toml:"chunk"`

	// Dir is the directory containing the manifest (set at load time).
	// Chunk files and sources are relative to it.
	Dir string `toml:"-"`
}

// Program contains program wide settings.
type Program struct {
	Name            string `toml:"name"`
	Key             uint8  `toml:"key"`
	Marker          string `toml:"marker"`
	MaxInstructions int64  `toml:"max-instructions"`
}

// Chunk is one piece of the instruction stream. Exactly one of Data, File or
// Source must be set. Data and File hold obfuscated code, Source plain
// assembly.
type Chunk struct {
	Name   string `toml:"name"`
	Data   string `toml:"data"`
	File   string `toml:"file"`
	Source string `toml:"source"`
}

// Load parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read manifest")
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", path)
	}
	m, err := Parse(data, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}

// Parse parses manifest data. dir is used to resolve chunk files.
func Parse(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	m.Dir = dir

	// Defaults
	if !md.IsDefined("program", "key") {
		m.Program.Key = chunk.DefaultKey
	}
	if m.Program.Marker == "" {
		m.Program.Marker = DefaultMarker
	}

	if err = m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Program.MaxInstructions < 0 {
		return errors.Errorf("invalid max-instructions %d", m.Program.MaxInstructions)
	}
	seen := make(map[string]bool, len(m.Chunks))
	for i, c := range m.Chunks {
		if c.Name == "" {
			return errors.Errorf("chunk #%d: missing name", i+1)
		}
		if seen[c.Name] {
			return errors.Errorf("chunk %s: duplicate name", c.Name)
		}
		seen[c.Name] = true
		n := 0
		for _, s := range []string{c.Data, c.File, c.Source} {
			if s != "" {
				n++
			}
		}
		if n != 1 {
			return errors.Errorf("chunk %s: exactly one of data, file or source must be set", c.Name)
		}
	}
	return nil
}

// Names returns the chunk names in file order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Chunks))
	for i, c := range m.Chunks {
		names[i] = c.Name
	}
	return names
}

func (m *Manifest) find(name string) (*Chunk, error) {
	for i := range m.Chunks {
		if m.Chunks[i].Name == name {
			return &m.Chunks[i], nil
		}
	}
	return nil, errors.Errorf("unknown chunk %q", name)
}

func (m *Manifest) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// raw returns the chunk contents and whether they are obfuscated.
func (m *Manifest) raw(c *Chunk) (data []byte, encoded bool, err error) {
	switch {
	case c.Data != "":
		data, err = chunk.ParseHex(c.Data)
		return data, true, err
	case c.File != "":
		data, err = os.ReadFile(m.path(c.File))
		return data, true, err
	default:
		f, err := os.Open(m.path(c.Source))
		if err != nil {
			return nil, false, err
		}
		defer f.Close()
		data, err = asm.Assemble(c.Source, f)
		return data, false, err
	}
}

// Chunk returns the plain code of the named chunk.
func (m *Manifest) Chunk(name string) ([]byte, error) {
	c, err := m.find(name)
	if err != nil {
		return nil, err
	}
	data, encoded, err := m.raw(c)
	if err != nil {
		return nil, errors.Wrapf(err, "chunk %s", name)
	}
	if encoded {
		data = chunk.Decode(m.Program.Key, data)
	}
	return data, nil
}

// Bytecode builds the instruction stream made of the named chunks, in the
// given order. With no names, all chunks are used in file order.
func (m *Manifest) Bytecode(names ...string) ([]byte, error) {
	if len(names) == 0 {
		names = m.Names()
	}
	b := chunk.NewBuilder(m.Program.Key)
	for _, n := range names {
		c, err := m.find(n)
		if err != nil {
			return nil, err
		}
		data, encoded, err := m.raw(c)
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %s", n)
		}
		if encoded {
			b.Append(data)
		} else {
			b.AppendPlain(data)
		}
	}
	return b.Bytes(), nil
}
