package fetcher

import (
	"fmt"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// minConfidence is the chardet confidence below which a guess is ignored.
const minConfidence = 50

// decodeBody converts body to UTF-8. A BOM or a charset in the Content-Type
// header is trusted; a meta declaration is used next; otherwise the bytes
// are sniffed, falling back to statistical detection.
func decodeBody(body []byte, contentType string) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)

	// windows-1252 with no certainty is DetermineEncoding's "no idea".
	if !certain && name == "windows-1252" {
		if res, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && res.Confidence >= minConfidence {
			if e, n := charset.Lookup(res.Charset); e != nil {
				enc, name = e, n
			}
		}
	}

	if name == "utf-8" {
		return string(body), name, nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", name, fmt.Errorf("decoding %s body: %w", name, err)
	}
	return string(decoded), name, nil
}
