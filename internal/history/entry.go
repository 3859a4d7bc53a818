package history

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Entry is a single recorded review.
type Entry struct {
	PRNumber      string            `json:"pr_number,omitempty"`
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	PriorityScore int               `json:"priority_score"`
	HighRisk      bool              `json:"high_risk"`
	ContentHash   string            `json:"content_hash"`
	Timestamp     string            `json:"timestamp"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// NewEntry builds an Entry with the content hash and timestamp filled in.
// contentPreview is the reviewed content (or a prefix of it) used for
// duplicate detection.
func NewEntry(prNumber, title, category string, priorityScore int, highRisk bool, contentPreview string, meta map[string]string) Entry {
	return Entry{
		PRNumber:      prNumber,
		Title:         title,
		Category:      category,
		PriorityScore: priorityScore,
		HighRisk:      highRisk,
		ContentHash:   HashContent(contentPreview),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Meta:          meta,
	}
}

// HashContent returns the SHA-256 hex digest of the given content preview.
func HashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}
