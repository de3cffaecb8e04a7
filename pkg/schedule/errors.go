package schedule

import "fmt"

// MalformedFeedError describes the first record that broke store construction.
type MalformedFeedError struct {
	Index  int
	Date   string
	Reason string
}

func (e *MalformedFeedError) Error() string {
	return fmt.Sprintf("malformed feed record #%d (%s): %s", e.Index, e.Date, e.Reason)
}
