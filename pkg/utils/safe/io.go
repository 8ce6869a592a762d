package safe

import (
	"context"
	"io"

	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// Close closes c and logs the error instead of returning it. Meant for
// defer sites where the close error cannot change the outcome. Nil closers
// are ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Error("failed to close", "error", err)
	}
}

// Write writes data to w and logs the error instead of returning it. Used
// on streaming responses where a gone client is expected, not exceptional.
// Nil writers are ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write", "error", err)
	}
}
