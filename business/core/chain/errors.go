package chain

import "errors"

// Set of request level errors. None of them end a session.
var (
	ErrMalformed       = errors.New("malformed input")
	ErrDifficultyLimit = errors.New("difficulty above service limit")
)
