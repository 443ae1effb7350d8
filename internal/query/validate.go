package query

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

// Validate rejects filters that go beyond comparisons, boolean logic, `in`
// and `not`. String literals are skipped so colors and choice texts may
// contain any character.
func Validate(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}

	code, err := stripLiterals(src)
	if err != nil {
		return err
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\'}
	for _, ch := range illegalChars {
		if strings.ContainsRune(code, ch) {
			return invalid(src, fmt.Sprintf("illegal character %q", ch))
		}
	}

	if strings.Contains(code, ".") {
		return invalid(src, "member access is not allowed")
	}

	illegalOps := []string{"+", "-", "*", "/", "%", "^"}
	for _, op := range illegalOps {
		if strings.Contains(code, op) {
			return invalid(src, fmt.Sprintf("arithmetic operator %q is not allowed", op))
		}
	}

	for _, field := range strings.FieldsFunc(code, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if field == "matches" {
			return invalid(src, "regular expressions are not allowed")
		}
	}

	for i := 0; i < len(code); i++ {
		if code[i] == '|' && !strings.HasPrefix(code[i:], "||") && (i == 0 || code[i-1] != '|') {
			return invalid(src, "pipes are not allowed")
		}
		if code[i] != '(' {
			continue
		}
		j := i - 1
		for j >= 0 && unicode.IsSpace(rune(code[j])) {
			j--
		}
		if j >= 0 && (unicode.IsLetter(rune(code[j])) || unicode.IsDigit(rune(code[j])) || code[j] == '_') {
			k := j
			for k >= 0 && (unicode.IsLetter(rune(code[k])) || unicode.IsDigit(rune(code[k])) || code[k] == '_') {
				k--
			}
			ident := code[k+1 : j+1]
			if !isKeyword(ident) {
				return invalid(src, fmt.Sprintf("function calls are not allowed (found %q(...))", ident))
			}
		}
	}

	return nil
}

// isKeyword reports operators that may legitimately precede a parenthesis.
func isKeyword(ident string) bool {
	switch ident {
	case "not", "and", "or", "in":
		return true
	}
	return false
}

// stripLiterals blanks out quoted strings, keeping the quotes so that
// adjacent tokens stay apart.
func stripLiterals(src string) (string, error) {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if quote == 0 {
			if ch == '"' || ch == '\'' || ch == '`' {
				quote = ch
			}
			b.WriteByte(ch)
			continue
		}
		switch {
		case ch == '\\' && quote != '`' && i+1 < len(src):
			i++
			b.WriteString("  ")
		case ch == quote:
			quote = 0
			b.WriteByte(ch)
		default:
			b.WriteByte(' ')
		}
	}
	if quote != 0 {
		return "", invalid(src, "unterminated string literal")
	}
	return b.String(), nil
}

func invalid(src, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidQuery, reason, map[string]string{"query": src})
}
