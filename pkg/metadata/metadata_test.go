package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(path string, tweets int) ExportRecord {
	return ExportRecord{
		SessionID:   "session-1",
		Mode:        "single",
		Target:      "jack",
		Query:       "from:jack",
		Path:        path,
		Format:      "csv",
		Tweets:      tweets,
		OldestTweet: "2024-01-01 10:00:00",
		NewestTweet: "2024-06-30 12:00:00",
		CompletedAt: time.Now(),
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load on empty dir: %v", err)
	}
	if len(m.Records) != 0 {
		t.Fatalf("expected empty manifest, got %d records", len(m.Records))
	}

	m.Upsert(sampleRecord("/out/jack_tweets.csv", 150))
	m.Upsert(sampleRecord("/out/finkd_tweets.csv", 42))
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(reloaded.Records))
	}
	if reloaded.TotalTweets() != 192 {
		t.Errorf("expected 192 total tweets, got %d", reloaded.TotalTweets())
	}

	record := reloaded.Find("/out/jack_tweets.csv")
	if record == nil {
		t.Fatal("expected to find record by path")
	}
	if record.Tweets != 150 {
		t.Errorf("expected 150 tweets, got %d", record.Tweets)
	}
	if record.Query != "from:jack" {
		t.Errorf("query lost in round trip: %q", record.Query)
	}
}

func TestManifestUpsertReplaces(t *testing.T) {
	dir := t.TempDir()

	m, _ := Load(dir)
	m.Upsert(sampleRecord("/out/jack_tweets.csv", 10))
	m.Upsert(sampleRecord("/out/jack_tweets.csv", 25))

	if len(m.Records) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(m.Records))
	}
	if m.Records[0].Tweets != 25 {
		t.Errorf("expected replacement to win, got %d tweets", m.Records[0].Tweets)
	}
}

func TestManifestRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for corrupt manifest")
	}
}
