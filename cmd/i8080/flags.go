package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// hexFlag is a 16-bit address flag accepting 0x1234, 1234h or decimal.
type hexFlag uint16

var _ pflag.Value = (*hexFlag)(nil)

func (h *hexFlag) String() string {
	return fmt.Sprintf("0x%04x", uint16(*h))
}

func (h *hexFlag) Set(s string) error {
	v, err := parseHex(s)
	if err != nil {
		return err
	}
	*h = hexFlag(v)
	return nil
}

func (h *hexFlag) Type() string {
	return "addr"
}

func parseHex(s string) (uint16, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	case strings.HasSuffix(s, "h"):
		s, base = s[:len(s)-1], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uint16(v), nil
}
