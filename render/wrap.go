package render

import "strings"

// WrapText breaks text into lines of at most width cells at word boundaries.
// Runs of whitespace collapse to one space; explicit newlines are kept.
// Words wider than the line are split.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineWidth := 0
		flush := func() {
			if lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
		}

		for _, word := range words {
			w := StringWidth(word)
			switch {
			case lineWidth > 0 && lineWidth+1+w <= width:
				line.WriteByte(' ')
				line.WriteString(word)
				lineWidth += 1 + w
			case w <= width:
				flush()
				line.WriteString(word)
				lineWidth = w
			default:
				flush()
				pieces := WrapChars(word, width)
				lines = append(lines, pieces[:len(pieces)-1]...)
				last := pieces[len(pieces)-1]
				line.WriteString(last)
				lineWidth = StringWidth(last)
			}
		}
		flush()
	}
	return lines
}

// WrapChars breaks text at exactly width cells, keeping whitespace. It is
// used for preformatted content. Newlines always start a new line.
func WrapChars(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.ReplaceAll(para, "\t", "    ")
		if para == "" {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineWidth := 0
		for _, r := range para {
			w := UnicodeWidth(r)
			if lineWidth+w > width && lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			line.WriteRune(r)
			lineWidth += w
		}
		lines = append(lines, line.String())
	}
	return lines
}
