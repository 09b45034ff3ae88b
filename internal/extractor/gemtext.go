package extractor

import "strings"

// gemtextContent converts a text/gemini document to plain text. The first
// top-level heading becomes the title and is dropped from the body; link
// lines keep their label, heading markers are stripped, preformatted blocks
// pass through verbatim, and a trailing EOT footer block is trimmed.
func gemtextContent(body string) (title, text string) {
	// Footers after an EOT marker carry navigation, not content.
	if main, _, found := strings.Cut(body, "\n\nEOT"); found {
		body = main
	}

	var out []string
	preformatted := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")

		if strings.HasPrefix(line, "```") {
			preformatted = !preformatted
			continue
		}
		if preformatted {
			out = append(out, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "# "):
			heading := strings.TrimSpace(line[2:])
			if title == "" {
				title = heading
				continue
			}
			out = append(out, heading)
		case strings.HasPrefix(line, "## "), strings.HasPrefix(line, "### "):
			out = append(out, strings.TrimSpace(strings.TrimLeft(line, "# ")))
		case strings.HasPrefix(line, "=>"):
			if label := linkLabel(line); label != "" {
				out = append(out, label)
			}
		case strings.HasPrefix(line, "> "):
			out = append(out, strings.TrimSpace(line[2:]))
		default:
			out = append(out, line)
		}
	}

	return title, strings.TrimSpace(strings.Join(out, "\n"))
}

// linkLabel returns the human-readable label of a "=> url label" line,
// falling back to the URL itself.
func linkLabel(line string) string {
	fields := strings.Fields(strings.TrimSpace(line[len("=>"):]))
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return strings.Join(fields[1:], " ")
}
