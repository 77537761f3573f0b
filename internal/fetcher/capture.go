package fetcher

import (
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Capture receives a plain text rendering of every exchange the fetcher makes, it is useful
// for checking what a page looked like when an extractor did not find something.
//
// note: fault injection point
type Capture interface {
	Write(name string, contents string) error
}

// DirCapture writes every exchange into its own file of a directory.
type DirCapture struct {
	directory string
}

func NewDirCapture(dir string) (DirCapture, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return DirCapture{}, err
	}
	return DirCapture{directory: dir}, nil
}

func (c DirCapture) Write(name string, contents string) error {
	return os.WriteFile(filepath.Join(c.directory, name), []byte(contents), 0644)
}

func formatHeaders(headers http.Header) string {
	var out strings.Builder
	for _, key := range slices.Sorted(maps.Keys(headers)) {
		for _, value := range headers[key] {
			fmt.Fprintf(&out, "%s: %s\n", key, value)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: response status
// 5: response headers in ("Key: Value" format)
// 6: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

---- RESPONSE ----

%d

%s

%s`

func formatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	if res.Request.RawRequest != nil {
		requestHeaders = res.Request.RawRequest.Header
	}
	return fmt.Sprintf(
		exchangeTemplate,
		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		res.StatusCode(),
		formatHeaders(res.Header()),
		res.String(),
	)
}
