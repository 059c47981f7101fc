package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is shared by every repository backend so callers can detect a
// missing entity without knowing which backend is in use.
var ErrNotFound = goerr.New("not found")
