package news

import (
	"context"
	"log"
	"time"

	"github.com/mmcdole/gofeed"

	"autoblog/config"
)

// RSSCollector fetches articles from a list of RSS or Atom feeds. The gofeed
// library detects and normalizes both formats, so feeds of either kind can be
// mixed freely.
type RSSCollector struct {
	feeds  []config.Feed
	parser *gofeed.Parser
	logger *log.Logger
}

// NewRSSCollector creates a collector over the given feeds.
func NewRSSCollector(feeds []config.Feed, logger *log.Logger) *RSSCollector {
	if logger == nil {
		logger = log.Default()
	}
	return &RSSCollector{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Collect fetches each configured feed in order and returns up to limit
// articles. A feed that fails to fetch or parse is logged and skipped rather
// than failing the whole batch.
func (c *RSSCollector) Collect(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 5
	}

	var articles []Article
	for _, feed := range c.feeds {
		if len(articles) >= limit {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		parsed, err := c.parser.ParseURLWithContext(feed.URL, fetchCtx)
		cancel()
		if err != nil {
			c.logger.Printf("skipping feed %s: %v", feed.Name, err)
			continue
		}

		for _, item := range parsed.Items {
			if len(articles) >= limit {
				break
			}
			articles = append(articles, feedItemToArticle(item, feed, parsed.Title))
		}
	}

	return articles, nil
}

// feedItemToArticle converts a feed item to an Article. The configured feed
// name wins over the feed's own title as the source label.
func feedItemToArticle(item *gofeed.Item, feed config.Feed, feedTitle string) Article {
	source := feed.Name
	if source == "" {
		source = feedTitle
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	} else {
		publishedAt = time.Now()
	}

	return Article{
		Title:       item.Title,
		Summary:     item.Description,
		URL:         item.Link,
		Source:      source,
		PublishedAt: publishedAt,
	}
}
