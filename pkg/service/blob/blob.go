// Package blob stores uploaded framework source files.
package blob

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ErrObjectNotFound is returned when no object exists at the key
var ErrObjectNotFound = goerr.New("object not found")

const objectKeyKey = "object_key"

// NewKey generates a storage key for an uploaded file, keeping its extension
// so the spreadsheet parser can pick a format later.
func NewKey(fileName string) string {
	return "uploads/" + uuid.New().String() + strings.ToLower(path.Ext(fileName))
}
