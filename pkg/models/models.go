package models

import (
	"strconv"
	"time"
)

// RawTweet is one upstream payload as delivered by the client library.
// Field names and shapes vary between endpoints and library versions, so
// it stays a loose map until the normalizer resolves it.
type RawTweet map[string]interface{}

// Tweet is the canonical record produced by the normalizer. ID and Text
// are required; everything else degrades to a zero value.
type Tweet struct {
	ID          string
	Date        string    // normalized "2006-01-02 15:04:05", or the raw string when unparseable
	PostedAt    time.Time // zero when the date string matched no known format
	Username    string
	DisplayName string
	Text        string
	Retweets    int
	Likes       int
	Replies     int
	Quotes      int
	Views       int
	URL         string
	Raw         RawTweet
}

// ExportHeader is the fixed column set written as the first row of every
// output file. The trailing export_path column records the absolute
// output location so a sheet copied elsewhere still names its origin.
var ExportHeader = []string{
	"date",
	"username",
	"display_name",
	"text",
	"retweets",
	"likes",
	"replies",
	"quotes",
	"views",
	"tweet_id",
	"tweet_url",
	"export_path",
}

// ExportRow projects the tweet onto ExportHeader order.
func (t *Tweet) ExportRow(exportPath string) []string {
	return []string{
		t.Date,
		t.Username,
		t.DisplayName,
		t.Text,
		strconv.Itoa(t.Retweets),
		strconv.Itoa(t.Likes),
		strconv.Itoa(t.Replies),
		strconv.Itoa(t.Quotes),
		strconv.Itoa(t.Views),
		t.ID,
		t.URL,
		exportPath,
	}
}
