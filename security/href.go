package security

import (
	"net/url"
	"strings"
)

var unsafeSchemes = map[string]bool{
	"javascript": true,
	"vbscript":   true,
	"data":       true,
	"file":       true,
}

// SafeHref reports whether a link target may be followed. Browsers ignore
// ASCII whitespace and control characters inside a scheme, so they are
// removed before the scheme is checked.
func SafeHref(href string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, href)
	if cleaned == "" {
		return false
	}

	u, err := url.Parse(cleaned)
	if err != nil {
		return false
	}
	return !unsafeSchemes[strings.ToLower(u.Scheme)]
}
