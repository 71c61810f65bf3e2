package writer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoblog/news"
)

// TestTruncate_ShortStringUnchanged verifies strings within the limit pass
// through
func TestTruncate_ShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello", Truncate("hello", 5))
}

// TestTruncate_LongStringCutExactly verifies cut strings hit the limit
// exactly and end with the marker
func TestTruncate_LongStringCutExactly(t *testing.T) {
	long := strings.Repeat("a", 600)

	got := Truncate(long, 500)

	assert.Len(t, got, 500, "truncated string should be exactly max bytes")
	assert.True(t, strings.HasSuffix(got, "..."), "truncated string should end with ellipsis")
}

// TestTruncate_OneOverLimit verifies the boundary just past the limit
func TestTruncate_OneOverLimit(t *testing.T) {
	got := Truncate(strings.Repeat("x", 501), 500)

	assert.Len(t, got, 500)
	assert.Equal(t, strings.Repeat("x", 497)+"...", got)
}

// TestTruncate_TinyMax verifies degenerate limits leave the string alone
func TestTruncate_TinyMax(t *testing.T) {
	assert.Equal(t, "abcdef", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}

// TestStaticWriter_ComposesFromArticle verifies the deterministic writer
func TestStaticWriter_ComposesFromArticle(t *testing.T) {
	article := news.Article{
		Title:   "Big News",
		Summary: "Something happened.",
		URL:     "http://example.com/big-news",
	}

	post, err := StaticWriter{}.Compose(context.Background(), article, 500)
	require.NoError(t, err)

	assert.Equal(t, "Big News", post.Title)
	assert.Equal(t, "Big News\n\nSomething happened.", post.Content)
	assert.Equal(t, DefaultHashtags, post.Hashtags)
	assert.Equal(t, "http://example.com/big-news", post.SourceURL)
	assert.NotZero(t, post.GeneratedAt)
}

// TestStaticWriter_RespectsMaxLength verifies content is capped
func TestStaticWriter_RespectsMaxLength(t *testing.T) {
	article := news.Article{
		Title:   "Title",
		Summary: strings.Repeat("s", 1000),
	}

	post, err := StaticWriter{}.Compose(context.Background(), article, 200)
	require.NoError(t, err)

	assert.Len(t, post.Content, 200)
	assert.True(t, strings.HasSuffix(post.Content, "..."))
}

// TestStaticWriter_TruncatesLongTitle verifies titles are capped at 50
func TestStaticWriter_TruncatesLongTitle(t *testing.T) {
	article := news.Article{Title: strings.Repeat("t", 80)}

	post, err := StaticWriter{}.Compose(context.Background(), article, 500)
	require.NoError(t, err)

	assert.Len(t, post.Title, 50)
}
