package utils

import "github.com/microcosm-cc/bluemonday"

var (
	// strict strips all markup; used for titles, links and descriptions.
	strict = bluemonday.StrictPolicy()
	// ugc keeps user-generated-content-safe markup; used for rendered rich text.
	ugc = bluemonday.UGCPolicy()
)

// SanitizeText strips any HTML from a plain-text field.
func SanitizeText(input string) string {
	return strict.Sanitize(input)
}

// SanitizeMarkup cleans rendered HTML to prevent XSS.
func SanitizeMarkup(input string) string {
	return ugc.Sanitize(input)
}
