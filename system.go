// Package autoblog wires the news collector, text writer, store, and blog
// poster into one linear pipeline: fetch topics, pick one, generate a post,
// publish it, record the outcome.
package autoblog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"autoblog/config"
	"autoblog/news"
	"autoblog/store"
	"autoblog/writer"
)

const (
	// fetchLimit caps how many topics one run pulls from the collector.
	fetchLimit = 5

	// recentPostWindow is how many recent posts are consulted to avoid
	// re-posting a topic.
	recentPostWindow = 30

	// retryLimit caps how many pending posts one retry run reattempts.
	retryLimit = 3
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	SaveArticle(article news.Article) error
	SavePost(post writer.BlogPost) (uuid.UUID, error)
	UpdatePostStatus(id uuid.UUID, status, blogURL string) error
	RecentPosts(limit int) ([]store.GeneratedPost, error)
	UnpublishedPosts(limit int) ([]store.GeneratedPost, error)
	Stats() (store.Stats, error)
	Log(level, message string, details map[string]any) error
}

// Publisher is the blog-facing surface the pipeline needs.
type Publisher interface {
	Login(ctx context.Context) error
	Publish(ctx context.Context, post writer.BlogPost) error
	Verify(ctx context.Context, post writer.BlogPost) string
}

// System sequences the pipeline and persists every transition.
type System struct {
	cfg       *config.Config
	store     Store
	collector news.Collector
	writer    writer.Writer
	publisher Publisher
	logger    *log.Logger
}

// NewSystem builds a System from an already-validated configuration and its
// collaborators.
func NewSystem(
	cfg *config.Config,
	st Store,
	collector news.Collector,
	w writer.Writer,
	publisher Publisher,
	logger *log.Logger,
) *System {
	if logger == nil {
		logger = log.Default()
	}
	return &System{
		cfg:       cfg,
		store:     st,
		collector: collector,
		writer:    w,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes the full pipeline once: collect, persist, select, generate,
// publish, record. Every failure is logged to the store and stops the run;
// nothing panics and nothing is retried within a single invocation.
func (s *System) Run(ctx context.Context) error {
	s.logger.Println("starting automation run")

	articles, err := s.collector.Collect(ctx, fetchLimit)
	if err != nil {
		s.logEvent("ERROR", "news collection failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("news collection failed: %w", err)
	}
	if len(articles) == 0 {
		s.logEvent("ERROR", "news collection returned no articles", nil)
		return errors.New("news collection returned no articles")
	}
	s.logger.Printf("collected %d articles", len(articles))

	for _, article := range articles {
		if err := s.store.SaveArticle(article); err != nil {
			s.logger.Printf("failed to save article %q: %v", article.Title, err)
		}
	}

	target := s.selectArticle(articles)
	s.logger.Printf("selected article: %s", target.Title)

	post, err := s.writer.Compose(ctx, target, s.cfg.MaxContentLength)
	if err != nil {
		s.logEvent("ERROR", "post generation failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("post generation failed: %w", err)
	}

	postID, err := s.store.SavePost(post)
	if err != nil {
		s.logEvent("ERROR", "failed to save generated post", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to save generated post: %w", err)
	}

	if err := s.publisher.Publish(ctx, post); err != nil {
		if updateErr := s.store.UpdatePostStatus(postID, store.StatusFailed, ""); updateErr != nil {
			s.logger.Printf("failed to record publish failure: %v", updateErr)
		}
		s.logEvent("ERROR", "publish failed", map[string]any{"post_id": postID.String()})
		return fmt.Errorf("publish failed: %w", err)
	}

	// Absence of a verified URL is tolerated; the publish already succeeded.
	blogURL := s.publisher.Verify(ctx, post)

	if err := s.store.UpdatePostStatus(postID, store.StatusPublished, blogURL); err != nil {
		s.logger.Printf("failed to record publish success: %v", err)
	}
	s.logEvent("INFO", "publish succeeded", map[string]any{
		"post_id": postID.String(),
		"url":     blogURL,
	})
	s.logger.Printf("published: %s", post.Title)

	return nil
}

// selectArticle returns the first article whose title has not appeared in the
// recent posts. When every title collides, the first article is posted again
// rather than posting nothing.
func (s *System) selectArticle(articles []news.Article) news.Article {
	recent, err := s.store.RecentPosts(recentPostWindow)
	if err != nil {
		s.logger.Printf("failed to load recent posts, falling back to first article: %v", err)
		return articles[0]
	}

	seen := make(map[string]struct{}, len(recent))
	for _, post := range recent {
		seen[post.Title] = struct{}{}
	}

	for _, article := range articles {
		if _, ok := seen[article.Title]; !ok {
			return article
		}
	}

	return articles[0]
}

// Test probes the writer and the store and logs a boolean summary. It never
// touches the blog.
func (s *System) Test(ctx context.Context) (writerOK, storeOK bool) {
	probe := news.Article{Title: "connectivity probe", Summary: "checking writer access"}
	if _, err := s.writer.Compose(ctx, probe, 100); err != nil {
		s.logger.Printf("writer probe failed: %v", err)
	} else {
		writerOK = true
	}

	if _, err := s.store.Stats(); err != nil {
		s.logger.Printf("store probe failed: %v", err)
	} else {
		storeOK = true
	}

	s.logEvent("INFO", "system test", map[string]any{
		"writer": writerOK,
		"store":  storeOK,
	})
	s.logger.Printf("system test: writer=%v store=%v", writerOK, storeOK)

	return writerOK, storeOK
}

// Dashboard prints aggregate counters to w.
func (s *System) Dashboard(w io.Writer) error {
	stats, err := s.store.Stats()
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	fmt.Fprintln(w, "Dashboard")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "%-20s: %d\n", "total_articles", stats.TotalArticles)
	fmt.Fprintf(w, "%-20s: %d\n", "total_posts", stats.TotalPosts)
	fmt.Fprintf(w, "%-20s: %d\n", "published_posts", stats.PublishedPosts)
	fmt.Fprintf(w, "%-20s: %d\n", "today_posts", stats.TodayPosts)
	fmt.Fprintf(w, "%-20s: %.2f%%\n", "success_rate", stats.SuccessRate)
	fmt.Fprintln(w, strings.Repeat("-", 30))

	return nil
}

// Retry reattempts publishing for up to three posts that never made it out.
// Content is reused as stored; nothing is re-generated.
func (s *System) Retry(ctx context.Context) error {
	pending, err := s.store.UnpublishedPosts(retryLimit)
	if err != nil {
		return fmt.Errorf("failed to load unpublished posts: %w", err)
	}
	if len(pending) == 0 {
		s.logger.Println("no posts to retry")
		return nil
	}

	for _, record := range pending {
		post := writer.BlogPost{
			Title:       record.Title,
			Content:     record.Content,
			Hashtags:    record.Hashtags,
			SourceURL:   record.SourceURL,
			GeneratedAt: record.GeneratedAt,
		}

		if err := s.publisher.Publish(ctx, post); err != nil {
			if updateErr := s.store.UpdatePostStatus(record.ID, store.StatusFailed, ""); updateErr != nil {
				s.logger.Printf("failed to record retry failure: %v", updateErr)
			}
			s.logEvent("ERROR", "retry publish failed", map[string]any{"post_id": record.ID.String()})
			continue
		}

		blogURL := s.publisher.Verify(ctx, post)
		if err := s.store.UpdatePostStatus(record.ID, store.StatusPublished, blogURL); err != nil {
			s.logger.Printf("failed to record retry success: %v", err)
		}
		s.logEvent("INFO", "retry publish succeeded", map[string]any{
			"post_id": record.ID.String(),
			"url":     blogURL,
		})
	}

	return nil
}

// logEvent writes to the system log table; a failed write must never break
// the pipeline, so it is only reported to the operator.
func (s *System) logEvent(level, message string, details map[string]any) {
	if err := s.store.Log(level, message, details); err != nil {
		s.logger.Printf("failed to write system log: %v", err)
	}
}
