package fetcher

import (
	"errors"
	"fmt"
)

// ErrHTTPStatus marks a non-200 response from the archive. Outcomes carry it
// formatted as "HTTP <code>".
var ErrHTTPStatus = errors.New("HTTP")

// ErrFileSystem marks a local filesystem failure while writing a download.
var ErrFileSystem = errors.New("filesystem error")

func httpStatusError(code int) error {
	return fmt.Errorf("%w %d", ErrHTTPStatus, code)
}
