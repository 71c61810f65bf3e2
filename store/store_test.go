package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoblog/news"
	"autoblog/writer"
)

func setupTestStore(t *testing.T) *Store {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost(title string, generatedAt time.Time) writer.BlogPost {
	return writer.BlogPost{
		Title:       title,
		Content:     "content for " + title,
		Hashtags:    "#test",
		SourceURL:   "http://example.com/" + title,
		GeneratedAt: generatedAt,
	}
}

// TestSaveArticle verifies articles are stored and counted
func TestSaveArticle(t *testing.T) {
	s := setupTestStore(t)

	err := s.SaveArticle(news.Article{
		Title:       "Test Article",
		URL:         "http://example.com/a",
		Summary:     "summary",
		Source:      "Test Source",
		PublishedAt: time.Now(),
	})
	require.NoError(t, err)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalArticles)
}

// TestSavePost_ReturnsID verifies a fresh post gets an id and generated
// status
func TestSavePost_ReturnsID(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SavePost(samplePost("Post", time.Now()))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	posts, err := s.RecentPosts(10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, id, posts[0].ID)
	assert.Equal(t, StatusGenerated, posts[0].Status)
	assert.Nil(t, posts[0].PublishedAt)
	assert.Nil(t, posts[0].BlogURL)
}

// TestRecentPosts_NewestFirst verifies ordering and limit
func TestRecentPosts_NewestFirst(t *testing.T) {
	s := setupTestStore(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"Oldest", "Middle", "Newest"} {
		_, err := s.SavePost(samplePost(title, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	posts, err := s.RecentPosts(2)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, "Newest", posts[0].Title)
	assert.Equal(t, "Middle", posts[1].Title)
}

// TestUpdatePostStatus_Published verifies the published stamp and URL
func TestUpdatePostStatus_Published(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SavePost(samplePost("Post", time.Now()))
	require.NoError(t, err)

	err = s.UpdatePostStatus(id, StatusPublished, "http://blog.example.com/post/1")
	require.NoError(t, err)

	posts, err := s.RecentPosts(1)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, StatusPublished, posts[0].Status)
	require.NotNil(t, posts[0].PublishedAt)
	require.NotNil(t, posts[0].BlogURL)
	assert.Equal(t, "http://blog.example.com/post/1", *posts[0].BlogURL)
	assert.NotNil(t, posts[0].UpdatedAt)
}

// TestUpdatePostStatus_FailedWithoutURL verifies a failure leaves no
// publish stamp
func TestUpdatePostStatus_FailedWithoutURL(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.SavePost(samplePost("Post", time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.UpdatePostStatus(id, StatusFailed, ""))

	posts, err := s.RecentPosts(1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, StatusFailed, posts[0].Status)
	assert.Nil(t, posts[0].PublishedAt)
	assert.Nil(t, posts[0].BlogURL)
}

// TestUpdatePostStatus_UnknownID verifies updating a missing post errors
func TestUpdatePostStatus_UnknownID(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdatePostStatus(uuid.New(), StatusFailed, "")

	assert.Error(t, err)
}

// TestUnpublishedPosts_ExcludesPublished verifies the retry query
func TestUnpublishedPosts_ExcludesPublished(t *testing.T) {
	s := setupTestStore(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	publishedID, err := s.SavePost(samplePost("Published", base))
	require.NoError(t, err)
	require.NoError(t, s.UpdatePostStatus(publishedID, StatusPublished, ""))

	_, err = s.SavePost(samplePost("Pending", base.Add(time.Hour)))
	require.NoError(t, err)

	failedID, err := s.SavePost(samplePost("Failed", base.Add(2*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, s.UpdatePostStatus(failedID, StatusFailed, ""))

	pending, err := s.UnpublishedPosts(10)
	require.NoError(t, err)

	require.Len(t, pending, 2)
	// Oldest first, so retries drain the backlog in order
	assert.Equal(t, "Pending", pending[0].Title)
	assert.Equal(t, "Failed", pending[1].Title)
}

// TestUnpublishedPosts_RespectsLimit verifies the retry cap
func TestUnpublishedPosts_RespectsLimit(t *testing.T) {
	s := setupTestStore(t)

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.SavePost(samplePost(string(rune('A'+i)), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	pending, err := s.UnpublishedPosts(3)
	require.NoError(t, err)

	assert.Len(t, pending, 3)
}

// TestStats verifies the aggregate counters
func TestStats(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveArticle(news.Article{Title: "A1", PublishedAt: time.Now()}))
	require.NoError(t, s.SaveArticle(news.Article{Title: "A2", PublishedAt: time.Now()}))

	id1, err := s.SavePost(samplePost("P1", time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.UpdatePostStatus(id1, StatusPublished, ""))

	id2, err := s.SavePost(samplePost("P2", time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.UpdatePostStatus(id2, StatusFailed, ""))

	stats, err := s.Stats()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalArticles)
	assert.Equal(t, 2, stats.TotalPosts)
	assert.Equal(t, 1, stats.PublishedPosts)
	assert.Equal(t, 1, stats.TodayPosts)
	assert.Equal(t, 50.0, stats.SuccessRate)
}

// TestStats_EmptyStore verifies zero counters with no divide-by-zero
func TestStats_EmptyStore(t *testing.T) {
	s := setupTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)

	assert.Zero(t, stats.TotalPosts)
	assert.Zero(t, stats.SuccessRate)
}

// TestLog verifies log entries with and without details
func TestLog(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Log("INFO", "something happened", map[string]any{"post_id": "abc"}))
	require.NoError(t, s.Log("ERROR", "something broke", nil))

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM system_logs").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var details *string
	err = s.db.QueryRow("SELECT details FROM system_logs WHERE level = 'INFO'").Scan(&details)
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Contains(t, *details, "post_id")

	err = s.db.QueryRow("SELECT details FROM system_logs WHERE level = 'ERROR'").Scan(&details)
	require.NoError(t, err)
	assert.Nil(t, details)
}
