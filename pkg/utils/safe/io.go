package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/cottus/pkg/utils/logging"
)

// Close closes closer and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close",
			"type", fmt.Sprintf("%T", closer),
			"error", err.Error())
	}
}

// Write writes data to w and logs a failure or a short write. A nil writer is ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write", "error", err.Error(), "written", n, "size", len(data))
		return
	}
	if n < len(data) {
		logging.From(ctx).Warn("short write", "written", n, "size", len(data))
	}
}
