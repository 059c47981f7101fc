package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// CategoryID groups risks in the register, e.g. "data-protection"
type CategoryID string

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the CategoryID is valid. Empty is allowed because a category is optional.
func (c CategoryID) Validate() error {
	if c == "" {
		return nil
	}
	if !idPattern.MatchString(string(c)) {
		return goerr.Wrap(ErrInvalidArgument, "category ID must be lowercase alphanumeric with hyphens", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of CategoryID
func (c CategoryID) String() string {
	return string(c)
}
