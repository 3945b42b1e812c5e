package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
)

// Ranked source keys per canonical field. Each entry may be a dotted path
// into a nested object ("user.screen_name"). The first present, non-empty
// value wins.
var (
	idKeys          = []string{"id", "id_str", "rest_id", "tweet_id"}
	textKeys        = []string{"text", "full_text", "legacy.full_text"}
	usernameKeys    = []string{"username", "screen_name", "user.screen_name", "user.username", "author.username", "author.screen_name"}
	displayNameKeys = []string{"display_name", "name", "user.name", "author.name"}
	createdAtKeys   = []string{"created_at", "created_at_datetime", "date", "timestamp"}
	retweetKeys     = []string{"retweet_count", "retweets", "public_metrics.retweet_count"}
	likeKeys        = []string{"favorite_count", "like_count", "likes", "public_metrics.like_count"}
	replyKeys       = []string{"reply_count", "replies", "public_metrics.reply_count"}
	quoteKeys       = []string{"quote_count", "quotes", "public_metrics.quote_count"}
	viewKeys        = []string{"view_count", "views.count", "views"}
)

// Known upstream timestamp layouts, most specific first. The bare-date
// layout has to come after the date+time ones or it would never lose.
var timeLayouts = []string{
	"Mon Jan 02 15:04:05 -0700 2006", // classic twitter format
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02",
}

const dateFormat = "2006-01-02 15:04:05"

// Tweet maps one raw upstream payload into the canonical record. It
// returns a classified unusable-record error when neither an identifier
// nor body text can be resolved; every other missing field degrades.
func Tweet(raw models.RawTweet) (*models.Tweet, error) {
	if raw == nil {
		return nil, errors.New(errors.TypeUnusableRecord, "nil payload")
	}

	id := stringField(raw, idKeys...)
	text := cleanText(stringField(raw, textKeys...))
	if id == "" || text == "" {
		return nil, errors.Newf(errors.TypeUnusableRecord, "payload missing id or text (id=%q)", id)
	}

	username := strings.TrimPrefix(stringField(raw, usernameKeys...), "@")

	t := &models.Tweet{
		ID:          id,
		Text:        text,
		Username:    username,
		DisplayName: stringField(raw, displayNameKeys...),
		Retweets:    intField(raw, retweetKeys...),
		Likes:       intField(raw, likeKeys...),
		Replies:     intField(raw, replyKeys...),
		Quotes:      intField(raw, quoteKeys...),
		Views:       intField(raw, viewKeys...),
		Raw:         raw,
	}

	rawDate := stringField(raw, createdAtKeys...)
	if posted, ok := ParseTimestamp(rawDate); ok {
		t.PostedAt = posted
		t.Date = posted.Format(dateFormat)
	} else {
		// Pass the raw string through rather than dropping the record.
		t.Date = rawDate
	}

	if username != "" {
		t.URL = fmt.Sprintf("https://twitter.com/%s/status/%s", username, id)
	}

	return t, nil
}

// ParseTimestamp tries the known upstream layouts in order. Timestamps
// are normalized to UTC for stable comparison across pages.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// stringField resolves the first present, non-empty string among the
// ranked keys.
func stringField(raw models.RawTweet, keys ...string) string {
	for _, key := range keys {
		v, ok := lookup(raw, key)
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case json.Number:
			return s.String()
		case float64:
			return strconv.FormatInt(int64(s), 10)
		case int:
			return strconv.Itoa(s)
		case int64:
			return strconv.FormatInt(s, 10)
		}
	}
	return ""
}

// intField resolves the first numeric value among the ranked keys,
// coercing the shapes JSON decoding produces. Absent or non-numeric
// values count as zero.
func intField(raw models.RawTweet, keys ...string) int {
	for _, key := range keys {
		v, ok := lookup(raw, key)
		if !ok {
			continue
		}
		if n, ok := coerceInt(v); ok {
			return n
		}
	}
	return 0
}

func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// lookup resolves a possibly dotted key path against nested maps.
func lookup(raw map[string]interface{}, path string) (interface{}, bool) {
	current := raw
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// cleanText flattens newlines so one record stays one output row.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
