package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"autoblog/news"
	"autoblog/writer"
)

// Post status values.
const (
	StatusGenerated = "generated"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Store persists fetched articles, generated posts, and system logs using
// SQLite.
type Store struct {
	db *sql.DB
}

// GeneratedPost is a persisted blog post together with its publication state.
type GeneratedPost struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Hashtags    string     `json:"hashtags"`
	SourceURL   string     `json:"source_url"`
	GeneratedAt time.Time  `json:"generated_at"`
	Status      string     `json:"status"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	BlogURL     *string    `json:"blog_url,omitempty"`
}

// Stats aggregates pipeline counters for the dashboard.
type Stats struct {
	TotalArticles  int     `json:"total_articles"`
	TotalPosts     int     `json:"total_posts"`
	PublishedPosts int     `json:"published_posts"`
	TodayPosts     int     `json:"today_posts"`
	SuccessRate    float64 `json:"success_rate"`
}

// NewStore opens (or creates) the database at the given path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT,
		summary TEXT,
		source TEXT,
		published_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS generated_posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		hashtags TEXT,
		source_url TEXT,
		generated_at TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at TEXT,
		published_at TEXT,
		blog_url TEXT
	);

	CREATE TABLE IF NOT EXISTS system_logs (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveArticle stores a fetched article. Articles are stored unconditionally;
// de-duplication happens at selection time, not here.
func (s *Store) SaveArticle(article news.Article) error {
	now := time.Now()

	query := `
		INSERT INTO news_articles (id, title, url, summary, source, published_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		uuid.New().String(),
		article.Title,
		article.URL,
		article.Summary,
		article.Source,
		formatTime(&article.PublishedAt),
		formatTime(&now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// SavePost stores a generated post with status "generated" and returns its id.
func (s *Store) SavePost(post writer.BlogPost) (uuid.UUID, error) {
	id := uuid.New()
	generatedAt := post.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	query := `
		INSERT INTO generated_posts (id, title, content, hashtags, source_url, generated_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		id.String(),
		post.Title,
		post.Content,
		post.Hashtags,
		post.SourceURL,
		formatTime(&generatedAt),
		StatusGenerated,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return id, nil
}

// UpdatePostStatus records the outcome of a publish attempt. A non-empty
// blogURL is stored alongside, and published_at is stamped when the status
// becomes "published".
func (s *Store) UpdatePostStatus(id uuid.UUID, status, blogURL string) error {
	now := time.Now()

	setClauses := "status = ?, updated_at = ?"
	args := []any{status, formatTime(&now)}

	if blogURL != "" {
		setClauses += ", blog_url = ?"
		args = append(args, blogURL)
	}
	if status == StatusPublished {
		setClauses += ", published_at = ?"
		args = append(args, formatTime(&now))
	}

	args = append(args, id.String())

	result, err := s.db.Exec(
		fmt.Sprintf("UPDATE generated_posts SET %s WHERE id = ?", setClauses),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update post status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post not found: %s", id)
	}

	return nil
}

// RecentPosts returns the most recently generated posts, newest first.
func (s *Store) RecentPosts(limit int) ([]GeneratedPost, error) {
	query := `
		SELECT id, title, content, hashtags, source_url, generated_at,
		       status, updated_at, published_at, blog_url
		FROM generated_posts
		ORDER BY generated_at DESC
		LIMIT ?
	`
	return s.queryPosts(query, limit)
}

// UnpublishedPosts returns posts that have not been published yet, oldest
// first so retries work through the backlog in order.
func (s *Store) UnpublishedPosts(limit int) ([]GeneratedPost, error) {
	query := `
		SELECT id, title, content, hashtags, source_url, generated_at,
		       status, updated_at, published_at, blog_url
		FROM generated_posts
		WHERE status != ?
		ORDER BY generated_at ASC
		LIMIT ?
	`
	return s.queryPosts(query, StatusPublished, limit)
}

// queryPosts runs a generated_posts SELECT and scans the rows.
func (s *Store) queryPosts(query string, args ...any) ([]GeneratedPost, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []GeneratedPost
	for rows.Next() {
		var post GeneratedPost
		var idStr, generatedAtStr string
		var hashtags, sourceURL, updatedAtStr, publishedAtStr, blogURL sql.NullString

		err := rows.Scan(
			&idStr, &post.Title, &post.Content, &hashtags, &sourceURL,
			&generatedAtStr, &post.Status, &updatedAtStr, &publishedAtStr, &blogURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		post.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse post ID: %w", err)
		}
		post.GeneratedAt = parseTime(generatedAtStr)

		if hashtags.Valid {
			post.Hashtags = hashtags.String
		}
		if sourceURL.Valid {
			post.SourceURL = sourceURL.String
		}
		if updatedAtStr.Valid {
			t := parseTime(updatedAtStr.String)
			post.UpdatedAt = &t
		}
		if publishedAtStr.Valid {
			t := parseTime(publishedAtStr.String)
			post.PublishedAt = &t
		}
		if blogURL.Valid {
			post.BlogURL = &blogURL.String
		}

		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Stats computes aggregate counters over the stored data.
func (s *Store) Stats() (Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		args  []any
		dest  *int
	}{
		{"SELECT COUNT(*) FROM news_articles", nil, &stats.TotalArticles},
		{"SELECT COUNT(*) FROM generated_posts", nil, &stats.TotalPosts},
		{"SELECT COUNT(*) FROM generated_posts WHERE status = ?", []any{StatusPublished}, &stats.PublishedPosts},
		{
			"SELECT COUNT(*) FROM generated_posts WHERE published_at >= ?",
			[]any{time.Now().UTC().Truncate(24 * time.Hour).Format(time.RFC3339)},
			&stats.TodayPosts,
		},
	}

	for _, c := range counts {
		if err := s.db.QueryRow(c.query, c.args...).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to query stats: %w", err)
		}
	}

	if stats.TotalPosts > 0 {
		rate := float64(stats.PublishedPosts) / float64(stats.TotalPosts) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	return stats, nil
}

// Log writes an entry to the system_logs table. Details are stored as JSON
// when present.
func (s *Store) Log(level, message string, details map[string]any) error {
	now := time.Now()

	var detailsJSON *string
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal log details: %w", err)
		}
		jsonStr := string(data)
		detailsJSON = &jsonStr
	}

	query := `
		INSERT INTO system_logs (id, level, message, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		uuid.New().String(),
		level,
		message,
		detailsJSON,
		formatTime(&now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
