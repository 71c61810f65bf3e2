package news

import "time"

// Article represents a single news topic fetched from a source. Articles are
// immutable once fetched and are de-duplicated by Title only.
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
