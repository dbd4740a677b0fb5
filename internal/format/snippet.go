// Package format renders campaign HTML for operator previews.
package format

import (
	"strings"

	"golang.org/x/net/html"
)

// Snippet returns the visible text of an HTML document with whitespace
// collapsed, cut to at most maxRunes runes. Unparseable input yields "".
func Snippet(htmlContent string, maxRunes int) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isInvisible(n.Data) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return truncate(text, maxRunes)
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style" || tag == "head" || tag == "title" || tag == "noscript"
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	rs := []rune(s)
	if len(rs) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string(rs[:maxRunes])) + "…"
}
