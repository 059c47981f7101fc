package memory

import "github.com/secmon-lab/cottus/pkg/domain/interfaces"

// ErrNotFound is returned when the requested entity does not exist
var ErrNotFound = interfaces.ErrNotFound
