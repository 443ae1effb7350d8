package narrative

import (
	"fmt"
	"strconv"

	apperrors "github.com/awmpietro/quantum-dilemma/internal/errors"
)

func graphError(format string, args ...any) error {
	return apperrors.New(apperrors.CodeInvalidGraph, fmt.Sprintf(format, args...))
}

func walkError(step int, text, dilemmaID, reason string) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidState,
		fmt.Sprintf("history step %d %q at dilemma %q: %s", step, text, dilemmaID, reason),
		map[string]string{"step": strconv.Itoa(step), "dilemma": dilemmaID},
	)
}
