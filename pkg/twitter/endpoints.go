package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	// BaseURL is the web client's API origin.
	BaseURL = "https://x.com"

	// SearchEndpoint is the web client's search timeline query.
	SearchEndpoint = "/i/api/graphql/nK1dw4oV3k4w5TdtcAdSww/SearchTimeline"

	// TweetEndpoint fetches a single tweet by its rest ID.
	TweetEndpoint = "/i/api/graphql/0hWvDhmW8YQ-S_ib3azIrw/TweetResultByRestId"

	// SettingsEndpoint is a cheap authenticated call used to verify a
	// session before any real work.
	SettingsEndpoint = "/1.1/account/settings.json"

	// WebBearerToken is the public token the web client ships to every
	// browser; authentication comes from the session cookies.
	WebBearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	// DefaultPageSize is the web client's search page size.
	DefaultPageSize = 20
)

// SearchURL builds the search timeline request URL for a query and an
// optional continuation cursor.
func SearchURL(base, query, cursor string) string {
	variables := map[string]interface{}{
		"rawQuery":    query,
		"count":       DefaultPageSize,
		"querySource": "typed_query",
		"product":     "Latest",
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	return graphqlURL(base, SearchEndpoint, variables)
}

// TweetURL builds the single-tweet request URL.
func TweetURL(base, id string) string {
	return graphqlURL(base, TweetEndpoint, map[string]interface{}{
		"tweetId":           id,
		"withCommunity":     false,
		"includePromotedContent": false,
	})
}

func graphqlURL(base, endpoint string, variables map[string]interface{}) string {
	blob, _ := json.Marshal(variables)
	params := url.Values{}
	params.Set("variables", string(blob))
	return fmt.Sprintf("%s%s?%s", base, endpoint, params.Encode())
}
