package errors

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// IsIgnorableError reports whether err is expected connection noise rather
// than a real failure. Typical sources are clients closing the event stream
// early and upstream keep-alive churn. These are logged at debug level only.
func IsIgnorableError(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) && netErr.Op == "write" {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "client disconnected")
}
