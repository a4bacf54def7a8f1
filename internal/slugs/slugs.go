// Package slugs derives file-system-safe names for exported search results.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// maxLength bounds a slug so export file names stay portable.
const maxLength = 80

// ComponentSlug converts a string to a slug appropriate for a file name
// component. Strings with nothing sluggable fall back to "all".
func ComponentSlug(s string) string {
	slugged := goslug.Make(s)
	if len(slugged) > maxLength {
		slugged = strings.TrimRight(slugged[:maxLength], "-")
	}
	if slugged == "" {
		return "all"
	}
	return slugged
}

// ExportName returns the file name for a saved search of kind with the given
// filter, e.g. "responsibilitynames-gl-inquiry.json".
func ExportName(kind, filter string) string {
	return ComponentSlug(kind) + "-" + ComponentSlug(filter) + ".json"
}
