package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRiskNotFound      = errors.New("risk not found")
	ErrControlNotFound   = errors.New("control not found")
	ErrFrameworkNotFound = errors.New("framework not found")
	ErrAppetiteNotFound  = errors.New("appetite not found")
	ErrObjectNotFound    = errors.New("uploaded file not found")

	// Configuration errors
	ErrBlobStoreNotConfigured = errors.New("blob store is not configured")
)

// Context keys for error values
const (
	StorageKeyKey = "storage_key"
	FileNameKey   = "file_name"
)
