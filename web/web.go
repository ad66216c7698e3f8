// Package web embeds the HTML templates served by the calculator.
package web

import "embed"

// Templates holds every page template under templates/.
//
//go:embed templates/*.html
var Templates embed.FS
