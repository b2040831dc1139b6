package vimlit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports malformed literal text. Line and Col are 1-indexed and
// refer to the text after continuation lines were joined.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads one literal value from text.
//
// Leading comment lines (first non-blank character is a double quote) are
// dropped as long as a later line holds the value. A line whose first
// non-blank character is a backslash continues the previous line and is
// joined to it with a single space.
func Parse(text string) (Value, error) {
	p := &parser{src: normalize(text), line: 1, col: 1}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected a value, found end of input")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after value", p.peek())
	}
	return v, nil
}

func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	last := len(lines) - 1
	for last >= 0 && strings.TrimSpace(lines[last]) == "" {
		last--
	}
	start := 0
	for start < last {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed != "" && !strings.HasPrefix(trimmed, `"`) {
			break
		}
		start++
	}

	var joined []string
	for _, line := range lines[start:] {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if strings.HasPrefix(trimmed, `\`) {
			rest := strings.TrimLeftFunc(trimmed[1:], unicode.IsSpace)
			if len(joined) > 0 {
				joined[len(joined)-1] += " " + rest
			} else {
				joined = append(joined, rest)
			}
			continue
		}
		joined = append(joined, line)
	}
	return strings.Join(joined, "\n")
}

type parser struct {
	src       string
	pos       int
	line, col int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.next()
	}
}

func (p *parser) expect(r rune) error {
	p.skipSpace()
	if p.eof() {
		return p.errorf("expected %q, found end of input", r)
	}
	if got := p.peek(); got != r {
		return p.errorf("expected %q, found %q", r, got)
	}
	p.next()
	return nil
}

func (p *parser) value() (Value, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected a value, found end of input")
	}
	switch r := p.peek(); {
	case r == '[':
		return p.list()
	case r == '{':
		return p.dict()
	case r == '\'':
		s, err := p.singleQuoted()
		return String(s), err
	case r == '"':
		s, err := p.doubleQuoted()
		return String(s), err
	case r == '-' || r == '+' || r == '.' || (r >= '0' && r <= '9'):
		return p.number()
	case r == 'v':
		return p.keyword()
	default:
		return nil, p.errorf("unexpected %q", r)
	}
}

func (p *parser) keyword() (Value, error) {
	for _, kw := range []struct {
		word string
		val  Value
	}{
		{"v:null", Null{}},
		{"v:true", Bool(true)},
		{"v:false", Bool(false)},
	} {
		if strings.HasPrefix(p.src[p.pos:], kw.word) {
			end := p.pos + len(kw.word)
			if end < len(p.src) && isIdent(p.src[end]) {
				continue
			}
			for range kw.word {
				p.next()
			}
			return kw.val, nil
		}
	}
	return nil, p.errorf("unknown keyword")
}

func isIdent(b byte) bool {
	return b == '_' || b == ':' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *parser) number() (Value, error) {
	line, col := p.line, p.col
	start := p.pos
	isFloat := false
	if r := p.peek(); r == '-' || r == '+' {
		p.next()
	}
	digits := 0
scan:
	for !p.eof() {
		r := p.peek()
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == 'e' || r == 'E':
			isFloat = true
		case (r == '-' || r == '+') && isFloat && strings.ContainsAny(p.src[p.pos-1:p.pos], "eE"):
		default:
			break scan
		}
		p.next()
	}
	text := p.src[start:p.pos]
	if digits == 0 {
		return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("malformed number %q", text)}
	}
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("malformed number %q", text)}
		}
		return Float(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("malformed number %q", text)}
	}
	return Int(n), nil
}

// singleQuoted reads a single-quoted string. A doubled apostrophe is the
// only escape.
func (p *parser) singleQuoted() (string, error) {
	line, col := p.line, p.col
	p.next()
	var b strings.Builder
	for !p.eof() {
		r := p.next()
		if r == '\'' {
			if !p.eof() && p.peek() == '\'' {
				p.next()
				b.WriteRune('\'')
				continue
			}
			return b.String(), nil
		}
		if r == '\n' {
			break
		}
		b.WriteRune(r)
	}
	return "", &ParseError{Line: line, Col: col, Msg: "unterminated single-quoted string"}
}

// doubleQuoted reads "..." with backslash escapes.
func (p *parser) doubleQuoted() (string, error) {
	line, col := p.line, p.col
	p.next()
	var b strings.Builder
	for !p.eof() {
		r := p.next()
		switch r {
		case '"':
			return b.String(), nil
		case '\n':
			return "", &ParseError{Line: line, Col: col, Msg: "unterminated double-quoted string"}
		case '\\':
			if p.eof() {
				break
			}
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
		}
	}
	return "", &ParseError{Line: line, Col: col, Msg: "unterminated double-quoted string"}
}

func (p *parser) escape(b *strings.Builder) error {
	r := p.next()
	switch r {
	case '\\', '"':
		b.WriteRune(r)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'e':
		b.WriteByte(0x1b)
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return nil
}

func (p *parser) hexEscape(b *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return p.errorf("truncated \\x/\\u escape")
	}
	digits := p.src[p.pos : p.pos+n]
	code, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return p.errorf("bad hex escape %q", digits)
	}
	for i := 0; i < n; i++ {
		p.next()
	}
	b.WriteRune(rune(code))
	return nil
}

func (p *parser) list() (Value, error) {
	p.next()
	list := List{}
	for {
		p.skipSpace()
		if !p.eof() && p.peek() == ']' {
			p.next()
			return list, nil
		}
		item, err := p.value()
		if err != nil {
			return nil, err
		}
		list = append(list, item)
		p.skipSpace()
		if !p.eof() && p.peek() == ',' {
			p.next()
			continue
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return list, nil
	}
}

func (p *parser) dict() (Value, error) {
	p.next()
	dict := Dict{}
	for {
		p.skipSpace()
		if !p.eof() && p.peek() == '}' {
			p.next()
			return dict, nil
		}
		if p.eof() {
			return nil, p.errorf("expected a key, found end of input")
		}
		line, col := p.line, p.col
		var key string
		var err error
		switch p.peek() {
		case '\'':
			key, err = p.singleQuoted()
		case '"':
			key, err = p.doubleQuoted()
		default:
			return nil, p.errorf("dict keys must be strings, found %q", p.peek())
		}
		if err != nil {
			return nil, err
		}
		if _, dup := dict.Get(key); dup {
			return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("duplicate key %q", key)}
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		dict = append(dict, Entry{Key: key, Value: val})
		p.skipSpace()
		if !p.eof() && p.peek() == ',' {
			p.next()
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return dict, nil
	}
}
