package campaign

import "strings"

// Campaign status values. Failed campaigns carry "error: <detail>".
const (
	StatusDraft  = "draft"
	StatusQueued = "queued"
	StatusSent   = "sent"

	errorPrefix = "error: "
)

// Outcome is the terminal result of one dispatch.
type Outcome struct {
	failure string
	failed  bool
}

// Sent is the outcome of a dispatch where every recipient was delivered.
func Sent() Outcome { return Outcome{} }

// Failed is the outcome of a dispatch that stopped on detail.
func Failed(detail string) Outcome { return Outcome{failure: detail, failed: true} }

// Status renders the outcome as a stored status value.
func (o Outcome) Status() string {
	if o.failed {
		return errorPrefix + o.failure
	}
	return StatusSent
}

// IsError reports whether status is a terminal failure.
func IsError(status string) bool {
	return strings.HasPrefix(status, errorPrefix)
}

// ErrorDetail returns the failure description of an error status.
func ErrorDetail(status string) string {
	return strings.TrimPrefix(status, errorPrefix)
}
