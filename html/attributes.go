package html

import (
	"regexp"
	"strings"
)

// attrPattern matches name="value" or name='value'. Names include '-' and ':'
// so that data-src is never read as src.
var attrPattern = regexp.MustCompile(`([\w:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// ParseAttributes extracts quoted name/value pairs from the attribute part of a tag.
// Later duplicates overwrite earlier ones; anything that does not match is ignored.
func ParseAttributes(s string) map[string]string {
	if strings.IndexByte(s, '=') < 0 {
		return nil
	}

	matches := attrPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(matches))
	for _, m := range matches {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[strings.ToLower(m[1])] = value
	}
	return attrs
}
