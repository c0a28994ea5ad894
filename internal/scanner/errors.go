package scanner

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning reports a Start call while a session is active.
var ErrAlreadyRunning = errors.New("a scan session is already running")

// ErrNoScannerAvailable reports an exhausted candidate chain with no
// launchable scanner found.
var ErrNoScannerAvailable = errors.New("no scanner executable or runtime available")

// ErrTimeout reports a session that hit the wall-clock bound.
var ErrTimeout = errors.New("scan session timed out")

// ScanFailedError reports the last fallback candidate exiting non-zero.
type ScanFailedError struct {
	Candidate string
	Code      int
}

func (e *ScanFailedError) Error() string {
	return fmt.Sprintf("scanner %s failed with exit code %d", e.Candidate, e.Code)
}
