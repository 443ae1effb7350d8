// Package terminal draws timeline snapshots as side-by-side text panels.
package terminal

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minPanel     = 12
)

// Layout splits total columns between n panels. Widths differ by at most
// one and the leftmost panels take the remainder.
func Layout(n, total int) []int {
	if n <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	base, rem := total/n, total%n
	out := make([]int, n)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// Width returns the width of the terminal on stdout, or 80 when stdout is
// not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// pad fills s with spaces up to width display columns, truncating when s is
// wider.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

// wrap breaks s into lines of at most width display columns on spaces.
// Words wider than a line are split.
func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		used = 0
	}
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		for ww > width {
			if used > 0 {
				flush()
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(word)
				head = word[:size]
			}
			lines = append(lines, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		if ww == 0 {
			continue
		}
		if used > 0 && used+1+ww > width {
			flush()
		}
		if used > 0 {
			line.WriteByte(' ')
			used++
		}
		line.WriteString(word)
		used += ww
	}
	if used > 0 {
		flush()
	}
	return lines
}
