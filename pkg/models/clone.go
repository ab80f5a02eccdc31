package models

// Occurrence is one unit taking part in a duplicate group.
type Occurrence struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	// Preview reads "<signature> (N lines, CC=M)".
	Preview string `json:"preview"`
}

// DuplicateGroup is a set of units sharing one fingerprint across at
// least two files.
type DuplicateGroup struct {
	// Fingerprint is the hex-encoded hash identifying the group.
	Fingerprint string `json:"fingerprint"`
	// TokenCount is the character length of the first occurrence's
	// preview. It approximates size and is not a lexical token count.
	TokenCount  int          `json:"token_count"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Files returns the distinct file paths of the group in first-seen order.
func (g *DuplicateGroup) Files() []string {
	seen := make(map[string]bool, len(g.Occurrences))
	var files []string
	for _, o := range g.Occurrences {
		if !seen[o.File] {
			seen[o.File] = true
			files = append(files, o.File)
		}
	}
	return files
}
