package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseDocument parses raw html into a queryable document. The html5 parsing algorithm
// recovers from any malformed input, so this never fails, nodes that could not be
// reconstructed simply won't be found.
func ParseDocument(body []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// only reachable on reader errors, which bytes.Reader doesn't produce
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the text of every node in sel with surrounding whitespace trimmed and
// inner runs of whitespace collapsed into a single space.
func CleanText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	text := removeNonPrintable(buffer.String())
	text = innerWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// LastPathSegment returns the final non-empty segment of a slash separated path.
func LastPathSegment(path string) string {
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	return segments[len(segments)-1]
}
