package terminal

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
)

// paint wraps s in a 24-bit foreground color taken from a #RRGGBB hex.
// Anything else is returned unchanged.
func paint(s, hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return s
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return s
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm%s%s", v>>16&0xff, v>>8&0xff, v&0xff, s, ansiReset)
}

func bold(s string) string { return ansiBold + s + ansiReset }

func dim(s string) string { return ansiDim + s + ansiReset }
