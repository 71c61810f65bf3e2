package blog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autoblog/writer"
)

const (
	// Fixed paths the AJAX and API strategies guess at. The target site's
	// integration surface is unknown in advance; these cover the common
	// layouts.
	ajaxLoginPath = "/ajax/login"
	ajaxPostPath  = "/ajax/post"
	apiAuthPath   = "/api/auth"
	apiPostsPath  = "/api/posts"

	// maxPostLength caps the combined title+content text handed to the blog.
	// This cap is independent of the writer's own content limit.
	maxPostLength = 500

	// titleMatchLength is how much of a post title Verify matches against
	// link text.
	titleMatchLength = 20

	defaultTimeout = 30 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// loginMarker is the text a login prompt is assumed to contain. Its absence
// from a post-login response body is what passes for confirmation on sites
// with no structured login API.
const loginMarker = "Login"

// Poster publishes posts to a blog whose integration surface is unknown in
// advance. Each operation tries a fixed, ordered list of strategies and
// accepts the first one that reports success. A Poster owns one HTTP session
// (cookies included) for its lifetime and must not be shared across
// goroutines.
type Poster struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *log.Logger
	loggedIn bool
}

// NewPoster creates a Poster for the blog at baseURL. A nil client gets a
// default with a 30 second timeout; a cookie jar is attached either way so the
// login session survives across requests.
func NewPoster(baseURL, username, password string, client *http.Client, logger *log.Logger) *Poster {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Poster{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   client,
		logger:   logger,
	}
}

// Login establishes a session with the blog. A prior success short-circuits
// immediately with no network traffic. The root page is fetched once; if that
// fetch fails, the whole operation fails without trying any strategy.
func (p *Poster) Login(ctx context.Context) error {
	if p.loggedIn {
		return nil
	}

	doc, err := p.fetchRoot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	strategies := []strategy{
		{"form", func(ctx context.Context) (bool, error) { return p.formLogin(ctx, doc) }},
		{"ajax", p.ajaxLogin},
		{"api", p.apiLogin},
	}

	if !p.tryStrategies(ctx, "login", strategies) {
		return errors.New("all login strategies failed")
	}

	p.loggedIn = true
	return nil
}

// Publish submits one post. Login is invoked first when the session is not
// yet established.
func (p *Poster) Publish(ctx context.Context, post writer.BlogPost) error {
	if err := p.Login(ctx); err != nil {
		return err
	}

	text := PostText(post)

	strategies := []strategy{
		{"form", func(ctx context.Context) (bool, error) { return p.formPost(ctx, post, text) }},
		{"ajax", func(ctx context.Context) (bool, error) { return p.ajaxPost(ctx, post, text) }},
		{"api", func(ctx context.Context) (bool, error) { return p.apiPost(ctx, post, text) }},
	}

	if !p.tryStrategies(ctx, "publish", strategies) {
		return errors.New("all publish strategies failed")
	}

	return nil
}

// Verify looks for the published post on the blog's front page and returns
// its resolved URL. An empty result is a normal outcome, not an error: the
// post may simply not be listed where we look.
func (p *Poster) Verify(ctx context.Context, post writer.BlogPost) string {
	doc, err := p.fetchRoot(ctx)
	if err != nil {
		p.logger.Printf("verify: failed to fetch front page: %v", err)
		return ""
	}

	prefix := post.Title
	if len(prefix) > titleMatchLength {
		prefix = prefix[:titleMatchLength]
	}

	var found string
	doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !linkMatchesTitle(link.Text(), prefix) {
			return true
		}
		href := link.AttrOr("href", "")
		switch {
		case strings.HasPrefix(href, "/"):
			found = p.baseURL + href
			return false
		case strings.HasPrefix(href, "http"):
			found = href
			return false
		}
		return true
	})

	return found
}

// PostText builds the outgoing text for a post: title, blank line, content,
// truncated to 500 bytes with a "..." marker when longer.
func PostText(post writer.BlogPost) string {
	return writer.Truncate(fmt.Sprintf("%s\n\n%s", post.Title, post.Content), maxPostLength)
}

// fetchRoot GETs the site's root page and parses it. Transport errors and
// non-2xx statuses are errors here, unlike inside the strategies.
func (p *Poster) fetchRoot(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// formLogin submits credentials through the first form on the root page.
// Pages without a form make this strategy inapplicable.
func (p *Poster) formLogin(ctx context.Context, doc *goquery.Document) (bool, error) {
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return false, nil
	}

	payload := collectInputs(form)
	payload.Set("username", p.username)
	payload.Set("password", p.password)

	status, body, err := p.postForm(ctx, p.resolveAction(form.AttrOr("action", "")), payload)
	if err != nil {
		return false, err
	}

	return loginSucceeded(status, body), nil
}

// ajaxLogin posts credentials as JSON to the conventional AJAX endpoint.
func (p *Poster) ajaxLogin(ctx context.Context) (bool, error) {
	payload := map[string]string{
		"username": p.username,
		"password": p.password,
		"action":   "login",
	}

	status, body, err := p.postJSON(ctx, p.baseURL+ajaxLoginPath, payload)
	if err != nil {
		return false, err
	}

	return is2xx(status) && successField(body), nil
}

// apiLogin posts credentials form-encoded to the conventional API endpoint.
func (p *Poster) apiLogin(ctx context.Context) (bool, error) {
	payload := url.Values{}
	payload.Set("user", p.username)
	payload.Set("pass", p.password)

	status, _, err := p.postForm(ctx, p.baseURL+apiAuthPath, payload)
	if err != nil {
		return false, err
	}

	return is2xx(status), nil
}

// formPost submits the post through the first form on the root page. The
// combined text goes into whatever textarea the form has, or a field named
// "content" when there is none.
func (p *Poster) formPost(ctx context.Context, post writer.BlogPost, text string) (bool, error) {
	doc, err := p.fetchRoot(ctx)
	if err != nil {
		return false, err
	}

	form := doc.Find("form").First()
	if form.Length() == 0 {
		return false, nil
	}

	payload := collectInputs(form)

	textareaName := "content"
	if textarea := form.Find("textarea").First(); textarea.Length() > 0 {
		if name := textarea.AttrOr("name", ""); name != "" {
			textareaName = name
		}
	}
	payload.Set(textareaName, text)

	if post.Hashtags != "" {
		payload.Set("hashtags", post.Hashtags)
		payload.Set("tags", post.Hashtags)
	}

	status, _, err := p.postForm(ctx, p.resolveAction(form.AttrOr("action", "")), payload)
	if err != nil {
		return false, err
	}

	return is2xx(status), nil
}

// ajaxPost submits the post as JSON to the conventional AJAX endpoint.
func (p *Poster) ajaxPost(ctx context.Context, post writer.BlogPost, text string) (bool, error) {
	payload := map[string]string{
		"title":    post.Title,
		"content":  text,
		"hashtags": post.Hashtags,
		"action":   "create_post",
	}

	status, body, err := p.postJSON(ctx, p.baseURL+ajaxPostPath, payload)
	if err != nil {
		return false, err
	}

	return is2xx(status) && successField(body), nil
}

// apiPost submits the post form-encoded to the conventional API endpoint.
func (p *Poster) apiPost(ctx context.Context, post writer.BlogPost, text string) (bool, error) {
	payload := url.Values{}
	payload.Set("post_title", post.Title)
	payload.Set("post_content", text)
	payload.Set("post_tags", post.Hashtags)

	status, _, err := p.postForm(ctx, p.baseURL+apiPostsPath, payload)
	if err != nil {
		return false, err
	}

	return status == http.StatusOK || status == http.StatusCreated, nil
}

// collectInputs gathers every named input's default value from a form so a
// submission looks like the browser filled it in.
func collectInputs(form *goquery.Selection) url.Values {
	payload := url.Values{}
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		payload.Set(name, input.AttrOr("value", ""))
	})
	return payload
}

// resolveAction turns a form's action attribute into an absolute URL.
func (p *Poster) resolveAction(action string) string {
	if strings.HasPrefix(action, "/") {
		return p.baseURL + action
	}
	return p.baseURL + "/" + action
}

// loginSucceeded is the heuristic login check: a 2xx response whose body no
// longer shows a login prompt. It is a pattern match on uncontrolled HTML,
// not a protocol-level confirmation; swap this predicate out if the target
// site ever grows a structured one.
func loginSucceeded(status int, body string) bool {
	return is2xx(status) && !strings.Contains(body, loginMarker)
}

// linkMatchesTitle is the heuristic post-visibility check: a case-sensitive
// substring match of the title prefix against a link's visible text.
func linkMatchesTitle(linkText, titlePrefix string) bool {
	return titlePrefix != "" && strings.Contains(linkText, titlePrefix)
}
