// Package must provides best-effort cleanup helpers that log failures instead
// of propagating them, for use on cancellation and shutdown paths where there
// is no longer a caller able to act on the error.
package must

import (
	"io"

	"github.com/ddorgan/substrate/pkg/logging"
)

// Close closes c, logging (rather than returning) any error.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}
