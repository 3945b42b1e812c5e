package tui

import (
	"testing"
	"time"
)

func TestModel(t *testing.T) {
	model := NewModel(`from:jack`, 100)

	// Test recording tweets
	model.RecordTweet(TweetPreview{ID: "1", Author: "jack", Date: "2024-01-01", Text: "first"})
	model.RecordTweet(TweetPreview{ID: "2", Author: "jack", Date: "2024-01-02", Text: "second"})

	if model.collected != 2 {
		t.Errorf("Expected 2 collected, got %d", model.collected)
	}

	recent := model.GetRecentTweets()
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent tweets, got %d", len(recent))
	}
	if recent[1].ID != "2" {
		t.Errorf("Expected newest tweet last, got %s", recent[1].ID)
	}

	// Test page accounting
	model.RecordPage(20, 17)
	if model.pagesFetched != 1 {
		t.Errorf("Expected 1 page fetched, got %d", model.pagesFetched)
	}
	if model.duplicates != 3 {
		t.Errorf("Expected 3 duplicates, got %d", model.duplicates)
	}

	// Test stage updates
	model.SetStage("consuming page")
	if model.stage != "consuming page" {
		t.Errorf("Expected stage to update, got %s", model.stage)
	}

	// Test cooldown
	until := time.Now().Add(time.Minute)
	model.SetCooldown("rate limited", until)
	if model.cooldownReason != "rate limited" {
		t.Errorf("Expected cooldown reason to update, got %s", model.cooldownReason)
	}

	// Test log messages
	model.AddLogMessage("INFO", "Test message")
	if len(model.logMessages) != 1 {
		t.Errorf("Expected 1 log message, got %d", len(model.logMessages))
	}

	// Test progress toward target
	if p := model.Percentage(); p != 0.02 {
		t.Errorf("Expected 0.02 progress, got %f", p)
	}
}

func TestModelRecentTweetsBounded(t *testing.T) {
	model := NewModel("from:jack", 0)

	for i := 0; i < 20; i++ {
		model.RecordTweet(TweetPreview{ID: string(rune('a' + i)), Author: "jack", Text: "t"})
	}

	recent := model.GetRecentTweets()
	if len(recent) != model.maxRecent {
		t.Errorf("Expected recent list capped at %d, got %d", model.maxRecent, len(recent))
	}
	if model.collected != 20 {
		t.Errorf("Expected collected to keep counting, got %d", model.collected)
	}
}

func TestModelLogBounded(t *testing.T) {
	model := NewModel("from:jack", 0)

	for i := 0; i < 60; i++ {
		model.AddLogMessage("INFO", "message")
	}

	if len(model.logMessages) != model.maxLogMessages {
		t.Errorf("Expected logs capped at %d, got %d", model.maxLogMessages, len(model.logMessages))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"short", 20, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer string that gets cut", 10, "a longe..."},
		{"anything", 2, "..."},
	}

	for _, test := range tests {
		result := truncate(test.input, test.max)
		if result != test.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", test.input, test.max, result, test.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{90 * time.Second, "01:30"},
		{time.Hour + 5*time.Minute + 3*time.Second, "01:05:03"},
		{-time.Second, "00:00:00"},
	}

	for _, test := range tests {
		result := formatDuration(test.d)
		if result != test.expected {
			t.Errorf("formatDuration(%v) = %s, expected %s", test.d, result, test.expected)
		}
	}
}
