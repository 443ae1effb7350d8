package terminal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

type CommandKind int

// maxLabelLetters bounds panel labels at "ZZZ".
const maxLabelLetters = 3

const (
	CommandChoose CommandKind = iota + 1
	CommandReset
	CommandQuit
	CommandHelp
)

// Command is one line of player input. For CommandChoose, Panel is the
// zero-based display position and Choice the zero-based choice index.
type Command struct {
	Kind   CommandKind
	Panel  int
	Choice int
}

// ParseCommand reads "a1", "b 2", "AA1", "r", "q" or "?".
func ParseCommand(input string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "r", "reset":
		return Command{Kind: CommandReset}, nil
	case "q", "quit", "exit":
		return Command{Kind: CommandQuit}, nil
	case "?", "h", "help":
		return Command{Kind: CommandHelp}, nil
	case "":
		return Command{}, badCommand(input, "empty input")
	}

	letters := strings.TrimRightFunc(s, func(r rune) bool { return unicode.IsDigit(r) || unicode.IsSpace(r) })
	digits := strings.TrimSpace(s[len(letters):])
	if letters == "" || digits == "" {
		return Command{}, badCommand(input, "expected a panel letter and a choice number, e.g. a1")
	}

	if len(letters) > maxLabelLetters {
		return Command{}, badCommand(input, fmt.Sprintf("panel label %q is longer than %d letters", letters, maxLabelLetters))
	}

	panel := 0
	for _, r := range letters {
		if r < 'a' || r > 'z' {
			return Command{}, badCommand(input, fmt.Sprintf("%q is not a panel label", letters))
		}
		panel = panel*26 + int(r-'a') + 1
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 2 {
		return Command{}, badCommand(input, "choice must be 1 or 2")
	}

	return Command{Kind: CommandChoose, Panel: panel - 1, Choice: n - 1}, nil
}

func badCommand(input, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, reason, map[string]string{"input": input})
}
