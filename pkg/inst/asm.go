package inst

import (
	"errors"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every assembly error.
var ErrSyntax = errors.New(f("cannot assemble"))

// SyntaxError reports text that matches no table entry.
type SyntaxError struct {
	Text string
}

func (err *SyntaxError) Error() string {
	return f("unknown instruction %q", err.Text)
}

func (err *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Assemble encodes instructions written the way Disassemble prints them.
// Instructions are separated by ':' or newlines. Immediates may be written
// as 0x1f, 1fh or decimal.
func Assemble(text string) ([]uint8, error) {
	var code []uint8
	for _, line := range strings.Split(text, "\n") {
		for _, part := range strings.Split(line, ":") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			enc, err := AssembleOne(part)
			if err != nil {
				return code, err
			}
			code = append(code, enc...)
		}
	}
	if len(code) == 0 {
		return nil, &SyntaxError{Text: text}
	}
	return code, nil
}

// AssembleOne encodes a single instruction.
func AssembleOne(text string) ([]uint8, error) {
	text = normalize(text)
	for op := 0; op < 256; op++ {
		info := &catalog[op]
		if !info.Defined() {
			continue
		}

		if info.Operand == OperandNone {
			if text == info.Mnemonic {
				return []uint8{uint8(op)}, nil
			}
			continue
		}

		// The template holds one 0x%0Nx placeholder.
		idx := strings.Index(info.Mnemonic, "0x%0")
		if idx < 0 {
			continue
		}
		prefix := info.Mnemonic[:idx]
		suffix := info.Mnemonic[idx+len("0x%02x"):]
		if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, suffix) || len(text) < len(prefix)+len(suffix) {
			continue
		}
		val, err := parseImmediate(text[len(prefix) : len(text)-len(suffix)])
		if err != nil {
			continue
		}
		if info.Operand == OperandImm8 {
			if val > 0xff {
				continue
			}
			return []uint8{uint8(op), uint8(val)}, nil
		}
		return []uint8{uint8(op), uint8(val), uint8(val >> 8)}, nil
	}
	return nil, &SyntaxError{Text: text}
}

// normalize lowercases and drops blanks other than the one after the
// mnemonic.
func normalize(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	}
	return fields[0] + " " + strings.Join(fields[1:], "")
}

func parseImmediate(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	case strings.HasSuffix(s, "h"):
		s, base = s[:len(s)-1], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err
}
