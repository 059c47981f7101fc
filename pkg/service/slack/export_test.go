package slack

// Export internal functions for testing
var (
	// TruncateToMaxBytes is exported for testing UTF-8 truncation
	TruncateToMaxBytes = truncateToMaxBytes

	BuildBlocks = buildBlocks
)
