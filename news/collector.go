package news

import "context"

// Collector fetches a small ordered list of news articles. Implementations
// must return at most limit articles and preserve source ordering.
type Collector interface {
	Collect(ctx context.Context, limit int) ([]Article, error)
}

// StaticCollector returns a fixed list of articles. It stands in for a live
// feed during probing and tests.
type StaticCollector struct {
	Articles []Article
}

// Collect returns up to limit of the configured articles.
func (c *StaticCollector) Collect(_ context.Context, limit int) ([]Article, error) {
	if limit <= 0 || limit > len(c.Articles) {
		limit = len(c.Articles)
	}
	out := make([]Article, limit)
	copy(out, c.Articles[:limit])
	return out, nil
}
