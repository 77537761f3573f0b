package stackoverflow

import (
	"fmt"
)

// FetchError is returned when the main page of an entity (the page without which no record
// can be built) could not be fetched with a 2xx status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
