package attribute

import (
	"regexp"
	"strings"

	"github.com/podsift/podsift/internal/model"
)

// Patterns that introduce participant names in episode metadata.
// Descriptions are free-form, so this stays heuristic: a handful of
// high-precision patterns beats one clever low-precision one.
var participantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)guest[s]?:?\s+((?:[A-Z][a-z]+\s+){1,2}[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)with\s+((?:Dr\.|Prof\.)\s+[A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)featuring\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)interview with\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)joined by\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`\b((?:Dr\.|Prof\.)\s+[A-Z][a-z]+\s+[A-Z][a-z]+)`),
}

// ExtractParticipants pulls candidate speaker names from episode
// metadata. Names are deduplicated case-insensitively and capped; the
// host name, when known, is always first.
func ExtractParticipants(meta model.SourceMetadata, maxParticipants int) []string {
	if maxParticipants <= 0 {
		maxParticipants = 5
	}

	var names []string
	seen := make(map[string]bool)

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	add(meta.HostName)

	text := meta.Title + "\n" + meta.Description
	for _, pattern := range participantPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			add(m[1])
			if len(names) >= maxParticipants {
				return names
			}
		}
	}

	return names
}
