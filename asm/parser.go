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

package asm

import (
	"encoding/binary"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/memoria-core/memoria/vm"
)

const maxErrors = 10

// isIdentRune accepts the runes of mnemonics, registers, labels, directives,
// numbers and character literals.
func isIdentRune(ch rune, i int) bool {
	switch ch {
	case '_', ':', '.', '\'', '-', '+', '\\':
		return true
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isName(s string) bool {
	for i, ch := range s {
		if ch == '_' || unicode.IsLetter(ch) || i > 0 && unicode.IsDigit(ch) {
			continue
		}
		return false
	}
	return s != ""
}

func parseReg(s string) (byte, bool) {
	if len(s) != 2 || s[0] != 'r' && s[0] != 'R' {
		return 0, false
	}
	r := s[1] - '0'
	if r >= vm.RegisterCount {
		return 0, false
	}
	return r, true
}

type labelSite struct {
	pos     scanner.Position
	address int
}

type labelUse struct {
	labelSite
	kind vm.Operand
}

type label struct {
	labelSite
	uses []labelUse
}

type constant struct {
	pos   scanner.Position
	value int64
}

type parser struct {
	code   []byte
	pc     int
	end    int
	s      scanner.Scanner
	pos    scanner.Position // position of the last token
	labels map[string]*label
	consts map[string]constant
	errs   ErrAsm
}

func newParser() *parser {
	p := new(parser)
	p.labels = make(map[string]*label)
	p.consts = make(map[string]constant)
	return p
}

func (p *parser) error(pos scanner.Position, msg string) {
	if len(p.errs) < maxErrors {
		p.errs = append(p.errs, Error{pos, msg})
	}
}

func (p *parser) emit(b ...byte) {
	for _, c := range b {
		if p.pc >= vm.MaxCodeSize {
			p.error(p.pos, "code size exceeds "+strconv.Itoa(vm.MaxCodeSize)+" bytes")
			return
		}
		for p.pc >= len(p.code) {
			p.code = append(p.code, make([]byte, 256)...)
		}
		p.code[p.pc] = c
		p.pc++
	}
	if p.pc > p.end {
		p.end = p.pc
	}
}

// next returns the text of the next token, skipping separators and comments.
// It returns false at EOF.
func (p *parser) next() (string, bool) {
	for {
		tok := p.s.Scan()
		p.pos = p.s.Position
		switch tok {
		case scanner.EOF:
			return "", false
		case scanner.Ident:
			s := p.s.TokenText()
			if s == "'" && p.s.Peek() == ' ' {
				// space character literal
				p.s.Next()
				if p.s.Peek() == '\'' {
					p.s.Next()
					return "' '", true
				}
			}
			return s, true
		case ',':
		case '(':
			p.skipComment()
		default:
			p.error(p.pos, "unexpected character "+strconv.QuoteRune(tok))
		}
	}
}

func (p *parser) skipComment() {
	start := p.pos
	for {
		switch p.s.Next() {
		case ')':
			return
		case scanner.EOF:
			p.error(start, "unterminated comment")
			return
		}
	}
}

// value converts s to an integer. s can be a Go integer literal, a character
// literal or the name of a constant.
func (p *parser) value(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return n, true
	}
	if len(s) > 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
		if err == nil && tail == "" {
			return int64(r), true
		}
		p.error(p.pos, "invalid character literal "+s)
		return 0, false
	}
	if c, ok := p.consts[s]; ok {
		return c.value, true
	}
	return 0, false
}

// number reads the next token as an integer in the range [min, max].
func (p *parser) number(what string, min, max int64) (int64, bool) {
	s, ok := p.next()
	if !ok {
		p.error(p.pos, what+": unexpected end of input")
		return 0, false
	}
	return p.checkRange(what, s, min, max)
}

func (p *parser) checkRange(what, s string, min, max int64) (int64, bool) {
	v, ok := p.value(s)
	if !ok {
		if len(p.errs) == 0 || p.errs[len(p.errs)-1].Pos != p.pos {
			p.error(p.pos, what+": expected integer value, got "+s)
		}
		return 0, false
	}
	if v < min || v > max {
		p.error(p.pos, what+": value "+s+" out of range")
		return 0, false
	}
	return v, true
}

func (p *parser) useLabel(name string, kind vm.Operand) {
	lbl := p.labels[name]
	if lbl == nil {
		lbl = &label{labelSite{p.pos, -1}, nil}
		p.labels[name] = lbl
	}
	lbl.uses = append(lbl.uses, labelUse{labelSite{p.pos, p.pc}, kind})
}

func (p *parser) defineLabel(name string) {
	if !isName(name) {
		p.error(p.pos, "invalid label name: "+strconv.Quote(name))
		return
	}
	if c, ok := p.consts[name]; ok {
		p.error(p.pos, "label redefinition: "+name+", previously defined as a constant here: "+c.pos.String())
		return
	}
	l, ok := p.labels[name]
	if !ok {
		p.labels[name] = &label{labelSite{p.pos, p.pc}, nil}
		return
	}
	if l.address != -1 {
		p.error(p.pos, "label redefinition: "+name+", previous definition here: "+l.pos.String())
		return
	}
	l.address = p.pc
	l.pos = p.pos
}

func (p *parser) directive(s string) {
	switch s {
	case ".org":
		if v, ok := p.number(".org", 0, vm.MaxCodeSize); ok {
			p.pc = int(v)
		}
	case ".dat":
		if v, ok := p.number(".dat", math.MinInt8, math.MaxUint8); ok {
			p.emit(byte(v))
		}
	case ".equ":
		name, ok := p.next()
		if !ok || !isName(name) {
			p.error(p.pos, ".equ: expected identifier, got "+strconv.Quote(name))
			return
		}
		if l, ok := p.labels[name]; ok {
			p.error(p.pos, ".equ: redefinition of "+name+", previously defined/used as a label here: "+l.pos.String())
			return
		}
		if c, ok := p.consts[name]; ok {
			p.error(p.pos, ".equ: redefinition of "+name+", previous definition here: "+c.pos.String())
			return
		}
		pos := p.pos
		if v, ok := p.number(".equ", math.MinInt32, math.MaxUint32); ok {
			p.consts[name] = constant{pos, v}
		}
	default:
		p.error(p.pos, "unknown directive: "+s)
	}
}

func (p *parser) operand(op vm.Opcode, kind vm.Operand) {
	what := op.String() + " " + kind.String()
	s, ok := p.next()
	if !ok {
		p.error(p.pos, what+": unexpected end of input")
		return
	}
	switch kind {
	case vm.Reg:
		r, ok := parseReg(s)
		if !ok {
			p.error(p.pos, what+": expected register r0-r3, got "+s)
		}
		p.emit(r)
	case vm.Addr:
		v, _ := p.checkRange(what, s, 0, math.MaxUint8)
		p.emit(byte(v))
	case vm.Imm32, vm.Target:
		var b [4]byte
		_, isConst := p.consts[s]
		_, isReg := parseReg(s)
		if isReg {
			p.error(p.pos, what+": unexpected register "+s)
		} else if isName(s) && !isConst {
			p.useLabel(s, kind)
		} else if kind == vm.Imm32 {
			v, _ := p.checkRange(what, s, math.MinInt32, math.MaxUint32)
			binary.LittleEndian.PutUint32(b[:], uint32(v))
		} else {
			v, _ := p.checkRange(what, s, 0, math.MaxUint16)
			binary.LittleEndian.PutUint16(b[:], uint16(v))
		}
		p.emit(b[:kind.Size()]...)
	}
}

// Parse does the parsing and compiling.
func (p *parser) Parse(name string, r io.Reader) ([]byte, ErrAsm) {
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.error(pos, msg)
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents
	p.s.Filename = name

	for len(p.errs) < maxErrors {
		s, ok := p.next()
		if !ok {
			break
		}
		switch s[0] {
		case ':':
			p.defineLabel(s[1:])
		case '.':
			p.directive(s)
		default:
			op, ok := mnemonics[strings.ToLower(s)]
			if !ok {
				p.error(p.pos, "unknown instruction: "+s)
				continue
			}
			p.emit(byte(op))
			for _, arg := range op.Operands() {
				p.operand(op, arg)
			}
		}
	}

	// resolve labels, in name order for stable error reporting
	names := make([]string, 0, len(p.labels))
	for n := range p.labels {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if l := p.labels[n]; l.address == -1 {
			p.error(l.uses[0].pos, "undefined label "+n)
		}
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	for _, n := range names {
		l := p.labels[n]
		for _, u := range l.uses {
			switch u.kind {
			case vm.Target:
				binary.LittleEndian.PutUint16(p.code[u.address:], uint16(l.address))
			case vm.Imm32:
				binary.LittleEndian.PutUint32(p.code[u.address:], uint32(l.address))
			}
		}
	}
	return p.code[:p.end], nil
}
