package errors

import "strings"

// Keyword sets for lexical failure classification. Upstream client
// libraries surface most failures as opaque error strings, so matching
// on message content is the only classification signal available.
var (
	authKeywords = []string{
		"unauthorized", "forbidden", "authentication", "token", "expired",
		"401", "403", "login", "credential", "session", "invalid cookie",
		"cookie expired", "not authenticated", "bad authentication",
	}

	networkKeywords = []string{
		"connection", "timeout", "network", "unreachable", "timed out",
		"connection reset", "connection refused", "temporary failure",
		"name resolution", "no such host", "ssl", "certificate",
		"handshake", "eof", "broken pipe", "connection aborted",
		"socket", "dns", "no route to host", "network is down",
		"temporarily unavailable",
	}

	rateLimitKeywords = []string{
		"rate limit", "too many requests", "429", "slow down",
		"try again later", "throttle", "rate_limit",
	}

	paginationKeywords = []string{
		"not found", "404", "no data", "empty response", "nil page",
		"null response", "missing cursor", "cannot iterate",
	}
)

// Classify maps a raw failure message to an error type by scanning for
// per-class keyword sets, case-insensitively. Auth keywords win over
// network ones ("session timeout" is an auth problem, not a socket one).
func Classify(msg string) Type {
	lower := strings.ToLower(msg)

	if containsAny(lower, authKeywords) {
		return TypeAuthExpired
	}
	if containsAny(lower, rateLimitKeywords) {
		return TypeRateLimited
	}
	if containsAny(lower, networkKeywords) {
		return TypeNetwork
	}
	if containsAny(lower, paginationKeywords) {
		return TypePagination
	}
	return TypeUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
