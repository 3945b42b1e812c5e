// Package twitter defines the client surface the scrape engine drives.
// The engine never talks to the network itself; it consumes these
// interfaces, so any transport that can authenticate, search, and page
// through results plugs in, and tests substitute scripted fakes.
package twitter

import (
	"context"
	"errors"

	"xscraper/pkg/models"
)

// ErrEndOfResults signals that pagination has genuinely run out of
// pages, as opposed to a transient empty response.
var ErrEndOfResults = errors.New("no more results")

// ErrNotFound signals that a requested tweet or account does not exist
// or is not visible to the authenticated session.
var ErrNotFound = errors.New("not found")

// Page is one page of search results. Next fetches the following page
// using the page's own continuation cursor.
type Page interface {
	// Tweets returns the raw records on this page. May be empty even
	// when more pages exist.
	Tweets() []models.RawTweet
	// Cursor returns the opaque continuation token identifying the
	// position after this page, for checkpointing.
	Cursor() string
	// Next fetches the next page. Returns ErrEndOfResults when the
	// result set is exhausted.
	Next(ctx context.Context) (Page, error)
}

// Client is an authenticated session against the tweet source.
type Client interface {
	// Search starts a paginated query. An opaque cursor from a previous
	// session may be supplied to continue where it left off; empty
	// starts from the top.
	Search(ctx context.Context, query string, cursor string) (Page, error)
	// TweetByID fetches one tweet. Returns ErrNotFound for deleted or
	// protected tweets.
	TweetByID(ctx context.Context, id string) (models.RawTweet, error)
}

// Authenticator establishes a Client from stored credentials.
type Authenticator interface {
	// Authenticate validates the stored credentials against the source
	// and returns a usable client. Expired or rejected credentials
	// surface as an auth error.
	Authenticate(ctx context.Context) (Client, error)
}
