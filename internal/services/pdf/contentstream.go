package pdf

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Kerning adjustments inside a TJ array wider than this (in thousandths of
// an em) are rendered as a word gap.
const tjSpaceThreshold = -200

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokArray
	tokName
	tokOperator
	tokOther
)

type token struct {
	kind  tokenKind
	text  string
	num   float64
	items []token
}

// DecodeContentStream recovers the visible text of a page content stream.
// Strings shown with Tj, TJ, ' and " are joined; line moves (T*, Td/TD with
// a vertical offset, Tm, ET) start a new line. Font encodings are assumed
// to be WinAnsi, which covers the standard fonts used by statement
// generators; two-byte strings with a zero high byte are read as UCS-2.
func DecodeContentStream(data []byte) string {
	var out, line strings.Builder
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}
	gap := func() {
		s := line.String()
		if s != "" && !strings.HasSuffix(s, " ") {
			line.WriteByte(' ')
		}
	}

	lex := &lexer{data: data}
	var operands []token
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if s, ok := lastString(operands); ok {
				line.WriteString(s)
			}
		case "'", "\"":
			flush()
			if s, ok := lastString(operands); ok {
				line.WriteString(s)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				for _, item := range operands[n-1].items {
					switch item.kind {
					case tokString:
						line.WriteString(item.text)
					case tokNumber:
						if item.num < tjSpaceThreshold {
							gap()
						}
					}
				}
			}
		case "Td", "TD":
			if n := len(operands); n >= 2 && operands[n-1].kind == tokNumber {
				if operands[n-1].num != 0 {
					flush()
				} else {
					gap()
				}
			}
		case "T*", "Tm", "ET":
			flush()
		case "ID":
			lex.skipInlineImage()
		}
		operands = operands[:0]
	}
	flush()

	return out.String()
}

func lastString(operands []token) (string, bool) {
	if n := len(operands); n > 0 && operands[n-1].kind == tokString {
		return operands[n-1].text, true
	}
	return "", false
}

type lexer struct {
	data []byte
	pos  int
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhite(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, text: decodeBytes(l.literal())}, true
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOther, text: "<<"}, true
			}
			l.pos++
			return token{kind: tokString, text: decodeBytes(l.hex())}, true
		case c == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokOther, text: ">>"}, true
		case c == '[':
			l.pos++
			var items []token
			for {
				if l.skipWhite(); l.pos >= len(l.data) {
					break
				}
				if l.data[l.pos] == ']' {
					l.pos++
					break
				}
				item, ok := l.next()
				if !ok {
					break
				}
				items = append(items, item)
			}
			return token{kind: tokArray, items: items}, true
		case c == ']' || c == '{' || c == '}' || c == ')':
			l.pos++
		case c == '/':
			l.pos++
			return token{kind: tokName, text: l.regular()}, true
		default:
			word := l.regular()
			if word == "" {
				l.pos++
				continue
			}
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, num: n, text: word}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

func (l *lexer) skipWhite() {
	for l.pos < len(l.data) && isWhite(l.data[l.pos]) {
		l.pos++
	}
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal reads a parenthesised string; the opening parenthesis has been consumed.
func (l *lexer) literal() []byte {
	var buf []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return buf
			}
			buf = append(buf, c)
		case '\\':
			if l.pos >= len(l.data) {
				return buf
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r', '\n':
				// line continuation
				if e == '\r' && l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					buf = append(buf, byte(v))
				} else {
					buf = append(buf, e)
				}
			}
		default:
			buf = append(buf, c)
		}
	}
	return buf
}

// hex reads a hex string; the opening angle bracket has been consumed.
func (l *lexer) hex() []byte {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isWhite(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return out
		}
		out = append(out, byte(v))
	}
	return out
}

// skipInlineImage skips binary inline image data up to the EI operator.
func (l *lexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isWhite(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isWhite(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func decodeBytes(b []byte) string {
	if len(b) >= 2 && len(b)%2 == 0 {
		ucs2 := true
		for i := 0; i < len(b); i += 2 {
			if b[i] != 0 {
				ucs2 = false
				break
			}
		}
		if ucs2 {
			narrow := make([]byte, 0, len(b)/2)
			for i := 1; i < len(b); i += 2 {
				narrow = append(narrow, b[i])
			}
			b = narrow
		}
	}

	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
