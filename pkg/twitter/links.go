package twitter

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
)

// statusLinkRe matches canonical status URLs on either domain and
// captures the numeric tweet ID.
var statusLinkRe = regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/\w+/status/(\d+)`)

// TweetIDFromLink extracts the tweet ID from a status URL. Anything
// that is not a status link is a malformed-input error.
func TweetIDFromLink(link string) (string, error) {
	m := statusLinkRe.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return "", errs.Newf(errs.TypeMalformedInput, "not a tweet link: %s", link)
	}
	return m[1], nil
}

// IsStatusLink reports whether the string is a recognizable status URL.
func IsStatusLink(link string) bool {
	return statusLinkRe.MatchString(strings.TrimSpace(link))
}

// LoadLinksFile reads a links file: one URL per line, blank lines and
// #-comments skipped. Invalid lines are dropped with a warning and
// duplicate tweet IDs silently, with the kept links returned in file
// order. An error is returned only when the file is unreadable or
// yields no usable links.
func LoadLinksFile(path string, log logger.Logger) ([]string, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open links file: %w", err)
	}
	defer f.Close()

	var links []string
	seen := make(map[string]bool)

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := TweetIDFromLink(line)
		if err != nil {
			log.WithFields(map[string]interface{}{
				"file": path,
				"line": lineNo,
				"link": line,
			}).Warn("Skipping malformed link")
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links file: %w", err)
	}

	if len(links) == 0 {
		return nil, errs.Newf(errs.TypeMalformedInput, "no valid tweet links in %s", path)
	}

	return links, nil
}
