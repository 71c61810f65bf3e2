package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"autoblog/news"
)

const systemPrompt = "You write short, engaging blog posts about technology news. " +
	"Plain text only, no markdown. " +
	"End your reply with a final line of the form 'HASHTAGS: #tag1 #tag2 #tag3'."

// OpenAIWriter composes posts with the official openai-go SDK (chat
// completions).
type OpenAIWriter struct {
	Model string
	Opts  []option.RequestOption
}

// NewOpenAIWriter validates the credentials and returns a writer bound to the
// given model.
func NewOpenAIWriter(apiKey, model, baseURL string) (*OpenAIWriter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if model == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIWriter{Model: model, Opts: opts}, nil
}

// Compose asks the model for a post about the article and parses the reply
// into a BlogPost. Content is truncated to maxLength bytes with a "..."
// marker when the model overruns.
func (w *OpenAIWriter) Compose(ctx context.Context, article news.Article, maxLength int) (BlogPost, error) {
	client := openai.NewClient(w.Opts...)

	user := fmt.Sprintf(
		"Write a blog post of at most %d characters about this news item.\n\nTitle: %s\nSummary: %s",
		maxLength, article.Title, article.Summary,
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(w.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return BlogPost{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return BlogPost{}, errors.New("openai: empty choices")
	}

	content, hashtags := splitHashtags(resp.Choices[0].Message.Content)
	if hashtags == "" {
		hashtags = DefaultHashtags
	}

	return BlogPost{
		Title:       Truncate(article.Title, maxTitleLength),
		Content:     Truncate(content, maxLength),
		Hashtags:    hashtags,
		SourceURL:   article.URL,
		GeneratedAt: time.Now(),
	}, nil
}

// splitHashtags separates the trailing HASHTAGS line from the post body. The
// line is optional; replies without it return an empty hashtag string.
func splitHashtags(reply string) (content, hashtags string) {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	if tags, ok := strings.CutPrefix(last, "HASHTAGS:"); ok {
		content = strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
		return content, strings.TrimSpace(tags)
	}

	return strings.TrimSpace(reply), ""
}
