package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
)

// HTTPClient talks to the web client's private API using a logged-in
// session's cookies. It implements Client.
type HTTPClient struct {
	httpClient *http.Client
	headers    map[string]string
	cookie     string
	baseURL    string
	logger     logger.Logger
}

// NewHTTPClient builds a client from session cookies. The cookie map
// must contain auth_token and ct0 (see LoadCookies).
func NewHTTPClient(cookies map[string]string, timeout time.Duration, log logger.Logger) *HTTPClient {
	if log == nil {
		log = logger.GetLogger()
	}

	pairs := make([]string, 0, len(cookies))
	for name, value := range cookies {
		pairs = append(pairs, name+"="+value)
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":            "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":                "application/json",
			"Accept-Language":       "en-US,en;q=0.9",
			"Authorization":         "Bearer " + WebBearerToken,
			"x-csrf-token":          cookies["ct0"],
			"x-twitter-auth-type":   "OAuth2Session",
			"x-twitter-active-user": "yes",
		},
		cookie:  strings.Join(pairs, "; "),
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetBaseURL points the client at a different origin. Tests use it to
// target a local server.
func (c *HTTPClient) SetBaseURL(base string) {
	c.baseURL = base
}

// Verify performs a cheap authenticated request so bad cookies fail at
// session start instead of mid-scrape.
func (c *HTTPClient) Verify(ctx context.Context) error {
	_, err := c.getJSON(ctx, c.baseURL+SettingsEndpoint)
	return err
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, query, cursor string) (Page, error) {
	body, err := c.getJSON(ctx, SearchURL(c.baseURL, query, cursor))
	if err != nil {
		return nil, err
	}

	tweets, next := parseSearchTimeline(body)
	c.logger.DebugWithFields("search page fetched", map[string]interface{}{
		"query":  query,
		"tweets": len(tweets),
		"cursor": next,
	})

	return &httpPage{client: c, query: query, tweets: tweets, cursor: next}, nil
}

// TweetByID implements Client.
func (c *HTTPClient) TweetByID(ctx context.Context, id string) (models.RawTweet, error) {
	body, err := c.getJSON(ctx, TweetURL(c.baseURL, id))
	if err != nil {
		return nil, err
	}

	result := dig(body, "data", "tweetResult", "result")
	raw := flattenTweet(result)
	if raw == nil {
		return nil, ErrNotFound
	}
	return raw, nil
}

// httpPage is one search page. Its cursor feeds the next request; an
// absent cursor means the timeline is exhausted.
type httpPage struct {
	client *HTTPClient
	query  string
	tweets []models.RawTweet
	cursor string
}

func (p *httpPage) Tweets() []models.RawTweet { return p.tweets }
func (p *httpPage) Cursor() string            { return p.cursor }

func (p *httpPage) Next(ctx context.Context) (Page, error) {
	if p.cursor == "" {
		return nil, ErrEndOfResults
	}
	return p.client.Search(ctx, p.query, p.cursor)
}

func (c *HTTPClient) getJSON(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.TypeUnknown, "failed to create request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Cookie", c.cookie)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.TypeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	logger.LogRequest(http.MethodGet, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.TypeNetwork, "failed to read response body", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errs.Wrap(errs.TypeUnknown, "failed to parse response", err)
	}
	return payload, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errs.Newf(errs.TypeAuthExpired, "authentication rejected with status %d", code)
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return errs.New(errs.TypeRateLimited, "rate limit exceeded")
	case code >= 500:
		return errs.Newf(errs.TypeNetwork, "server returned status %d", code)
	default:
		return errs.Newf(errs.TypeUnknown, "unexpected status code %d", code)
	}
}

// parseSearchTimeline walks the search response's instruction list and
// returns the tweet payloads plus the bottom continuation cursor.
func parseSearchTimeline(body map[string]interface{}) ([]models.RawTweet, string) {
	var tweets []models.RawTweet
	var cursor string

	instructions, _ := dig(body, "data", "search_by_raw_query", "search_timeline", "timeline", "instructions").([]interface{})
	for _, instr := range instructions {
		entries, _ := dig(instr, "entries").([]interface{})
		for _, entry := range entries {
			entryID, _ := dig(entry, "entryId").(string)
			switch {
			case strings.HasPrefix(entryID, "tweet-"):
				result := dig(entry, "content", "itemContent", "tweet_results", "result")
				if raw := flattenTweet(result); raw != nil {
					tweets = append(tweets, raw)
				}
			case strings.HasPrefix(entryID, "cursor-bottom-"):
				if v, ok := dig(entry, "content", "value").(string); ok {
					cursor = v
				} else if v, ok := dig(entry, "content", "itemContent", "value").(string); ok {
					cursor = v
				}
			}
		}
	}

	return tweets, cursor
}

// flattenTweet merges a tweet result's legacy payload, rest ID, view
// counts and author into one flat map the normalizer can resolve.
func flattenTweet(result interface{}) models.RawTweet {
	node, ok := result.(map[string]interface{})
	if !ok {
		return nil
	}
	// Tombstones and withheld tweets have no legacy payload.
	legacy, ok := dig(node, "legacy").(map[string]interface{})
	if !ok {
		return nil
	}

	raw := make(models.RawTweet, len(legacy)+3)
	for k, v := range legacy {
		raw[k] = v
	}
	if id, ok := node["rest_id"].(string); ok {
		raw["rest_id"] = id
	}
	if views, ok := dig(node, "views", "count").(string); ok {
		raw["view_count"] = views
	}
	if user, ok := dig(node, "core", "user_results", "result", "legacy").(map[string]interface{}); ok {
		raw["user"] = user
	}
	return raw
}

// dig walks nested map keys, returning nil as soon as a step is
// missing or not an object.
func dig(v interface{}, path ...string) interface{} {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// HTTPAuthenticator loads session cookies and verifies them against
// the API. It implements Authenticator. Cookies can come either from
// a cookies.json file or from an already resolved cookie map (e.g.
// the credential store).
type HTTPAuthenticator struct {
	CookiesFile string
	Cookies     map[string]string
	Timeout     time.Duration
	Logger      logger.Logger
}

// NewHTTPAuthenticator creates an authenticator for the given cookies
// file with a default request timeout.
func NewHTTPAuthenticator(cookiesFile string) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		CookiesFile: cookiesFile,
		Timeout:     30 * time.Second,
	}
}

// NewCookieAuthenticator creates an authenticator over a resolved
// cookie map.
func NewCookieAuthenticator(cookies map[string]string) *HTTPAuthenticator {
	return &HTTPAuthenticator{
		Cookies: cookies,
		Timeout: 30 * time.Second,
	}
}

// Authenticate implements Authenticator.
func (a *HTTPAuthenticator) Authenticate(ctx context.Context) (Client, error) {
	cookies := a.Cookies
	if cookies == nil {
		var err error
		cookies, err = LoadCookies(a.CookiesFile)
		if err != nil {
			return nil, err
		}
	}

	client := NewHTTPClient(cookies, a.Timeout, a.Logger)
	if err := client.Verify(ctx); err != nil {
		return nil, fmt.Errorf("session verification failed: %w", err)
	}
	return client, nil
}
