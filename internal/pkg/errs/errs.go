// Package errs wraps cockroachdb/errors so the rest of the codebase never
// imports it directly. Mark ties a concrete failure to a coarse sentinel that
// errors.Is can match without losing the original message or stack.
package errs

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return crdb.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return crdb.Wrap(err, msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return crdb.Mark(err, markErr)
}

// ExtractStackLines renders the first maxLines of the error's stack for
// structured logging.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
