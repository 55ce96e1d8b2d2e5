package token

import "errors"

// ErrNotFound reports a token that is absent, expired, or already consumed.
// Callers cannot distinguish the three; all mean the submission is not
// authorized.
var ErrNotFound = errors.New("token not found or expired")
