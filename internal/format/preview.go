package format

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		// UGC formatting plus the presentational attributes email layouts rely on.
		previewPolicy = bluemonday.UGCPolicy()
		previewPolicy.AllowAttrs("align", "bgcolor", "width", "height", "cellpadding", "cellspacing", "border").
			OnElements("table", "tr", "td", "th", "img")
		previewPolicy.AllowAttrs("color").OnElements("font")
		previewPolicy.AllowElements("font", "center")
	})
}

// SafePreview strips scripts, event handlers and unsafe URLs from campaign
// HTML so it can be shown to the operator. The stored body is not modified.
func SafePreview(htmlContent string) string {
	initPolicy()
	return previewPolicy.Sanitize(htmlContent)
}
