package types

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidArgument is returned when an enum or ordinal value is outside its known set
var ErrInvalidArgument = goerr.New("invalid argument")

// Context keys for error values
const (
	ValueKey   = "value"
	OrdinalKey = "ordinal"
)
