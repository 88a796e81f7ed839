package qcode

import "strings"

// ExtractLabels parses a raw label block like "{#alpha, beta}" into an
// ordered list of trimmed, per-block deduplicated labels. wellFormed is
// false when the blob is absent or lacks the {# ... } shape; in that case no
// labels are returned. A well-formed blob can still yield zero labels, e.g.
// "{#}" or "{# , }".
func ExtractLabels(blob string) (labels []string, wellFormed bool) {
	if !WellFormedBlob(blob) {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(blob, blobPrefix), blobSuffix)
	seen := make(map[string]bool)
	for _, piece := range strings.Split(inner, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" || seen[piece] {
			continue
		}
		seen[piece] = true
		labels = append(labels, piece)
	}
	return labels, true
}
