package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// showText returns the strings shown by each BT...ET block of a content
// stream. Strings outside text objects (there are none in practice) are
// ignored, as are empty blocks.
func showText(content []byte) ([]string, error) {
	var (
		out    []string
		block  bytes.Buffer
		inText bool
	)

	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case isSpace(c):
			i++
		case keyword(content, i, "BT"):
			inText = true
			block.Reset()
			i += 2
		case keyword(content, i, "ET"):
			if !inText {
				return nil, fmt.Errorf("%w: ET without BT at %d", ErrMalformed, i)
			}
			inText = false
			if s := decode(block.Bytes()); strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
			i += 2
		case c == '(':
			s, next, err := literal(content, i)
			if err != nil {
				return nil, err
			}
			if inText {
				block.Write(s)
			}
			i = next
		case c == '<' && !(i+1 < len(content) && content[i+1] == '<'):
			s, next := hexString(content, i)
			if inText {
				block.Write(s)
			}
			i = next
		default:
			i++
		}
	}
	if inText {
		return nil, fmt.Errorf("%w: unterminated text object", ErrMalformed)
	}
	return out, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

// keyword reports whether the operator kw starts at content[i] as a whole
// token.
func keyword(content []byte, i int, kw string) bool {
	if !bytes.HasPrefix(content[i:], []byte(kw)) {
		return false
	}
	if i > 0 && !isSpace(content[i-1]) && !isDelim(content[i-1]) {
		return false
	}
	end := i + len(kw)
	return end == len(content) || isSpace(content[end]) || isDelim(content[end])
}

// literal decodes the literal string starting at content[pos] and returns
// its bytes and the position after the closing parenthesis.
func literal(content []byte, pos int) ([]byte, int, error) {
	var buf bytes.Buffer
	depth := 1
	i := pos + 1
	for i < len(content) {
		c := content[i]
		i++
		switch c {
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return buf.Bytes(), i, nil
			}
			buf.WriteByte(c)
		case '\\':
			if i >= len(content) {
				break
			}
			e := content[i]
			i++
			switch e {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && i < len(content) && content[i] >= '0' && content[i] <= '7'; k++ {
						v = v*8 + int(content[i]-'0')
						i++
					}
					buf.WriteByte(byte(v))
				} else {
					buf.WriteByte(e)
				}
			}
		default:
			buf.WriteByte(c)
		}
	}
	return nil, 0, fmt.Errorf("%w: unterminated string at %d", ErrMalformed, pos)
}

// hexString decodes the hex string starting at content[pos]. A trailing odd
// digit is padded with zero.
func hexString(content []byte, pos int) ([]byte, int) {
	var buf bytes.Buffer
	hi := -1
	i := pos + 1
	for i < len(content) {
		c := content[i]
		i++
		if c == '>' {
			break
		}
		v := unhex(c)
		if v < 0 {
			continue
		}
		if hi < 0 {
			hi = v
			continue
		}
		buf.WriteByte(byte(hi<<4 | v))
		hi = -1
	}
	if hi >= 0 {
		buf.WriteByte(byte(hi << 4))
	}
	return buf.Bytes(), i
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func decode(b []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}
