package writer

import "time"

// BlogPost is a generated post derived from exactly one news article.
type BlogPost struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Hashtags    string    `json:"hashtags"`
	SourceURL   string    `json:"source_url"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Truncate shortens s to at most max bytes. When s is cut, the result is
// exactly max bytes and ends with "...".
func Truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
