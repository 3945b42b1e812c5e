package twitter

import (
	"encoding/json"
	"fmt"
	"os"

	errs "xscraper/pkg/errors"
)

// requiredCookies are the session cookies a usable login always has.
var requiredCookies = []string{"auth_token", "ct0"}

// LoadCookies reads a cookies JSON file, a flat name-to-value object
// exported from a logged-in browser session. Missing session cookies
// are reported as an auth error so the caller can prompt for a refresh
// instead of retrying.
func LoadCookies(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errs.Wrap(errs.TypeMalformedInput, "cookies file is not a JSON object of strings", err)
	}

	for _, name := range requiredCookies {
		if cookies[name] == "" {
			return nil, errs.Newf(errs.TypeAuthExpired, "cookies file is missing the %s cookie", name)
		}
	}

	return cookies, nil
}
