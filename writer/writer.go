package writer

import (
	"context"
	"fmt"
	"time"

	"autoblog/news"
)

// DefaultHashtags is applied when the model response carries no hashtag line.
const DefaultHashtags = "#AI #technology #news"

// maxTitleLength caps post titles regardless of source article length.
const maxTitleLength = 50

// Writer composes a blog post from a news article. Content must fit within
// maxLength bytes.
type Writer interface {
	Compose(ctx context.Context, article news.Article, maxLength int) (BlogPost, error)
}

// StaticWriter composes a deterministic post without calling any external
// service. It stands in for the live model during probing and tests.
type StaticWriter struct{}

// Compose builds a post directly from the article's title and summary.
func (StaticWriter) Compose(_ context.Context, article news.Article, maxLength int) (BlogPost, error) {
	content := fmt.Sprintf("%s\n\n%s", article.Title, article.Summary)

	return BlogPost{
		Title:       Truncate(article.Title, maxTitleLength),
		Content:     Truncate(content, maxLength),
		Hashtags:    DefaultHashtags,
		SourceURL:   article.URL,
		GeneratedAt: time.Now(),
	}, nil
}
