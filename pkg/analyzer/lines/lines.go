// Package lines classifies raw source lines as code, comment or blank.
package lines

import "strings"

// Counts holds the line totals for one file.
// Code+Comment never exceeds Total; blank lines count toward neither.
type Counts struct {
	Total   int
	Code    int
	Comment int
}

// Classify counts the lines of source in a single pass.
//
// Classification is per line: a line that closes a block comment and then
// carries code is counted entirely as comment, and comment markers inside
// string literals are not recognised.
func Classify(source string) Counts {
	segments := split(source)
	c := Counts{Total: len(segments)}

	inBlock := false
	for _, line := range segments {
		t := strings.TrimSpace(line)
		switch {
		case inBlock:
			c.Comment++
			if strings.Contains(t, "*/") {
				inBlock = false
			}
		case strings.HasPrefix(t, "/*"):
			c.Comment++
			if !strings.Contains(t, "*/") {
				inBlock = true
			}
		case strings.HasPrefix(t, "//"):
			c.Comment++
		case t == "":
		default:
			c.Code++
		}
	}
	return c
}

// split breaks text on "\n" and drops trailing empty segments. Empty text
// is a single empty line.
func split(source string) []string {
	if source == "" {
		return []string{""}
	}
	parts := strings.Split(source, "\n")
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}
