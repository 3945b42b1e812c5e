package twitter

import (
	"strings"
	"time"

	errs "xscraper/pkg/errors"
)

// dateLayout is the search syntax's date format.
const dateLayout = "2006-01-02"

// MatchMode controls how multiple keywords combine.
type MatchMode string

const (
	// MatchAll requires every keyword to appear.
	MatchAll MatchMode = "all"
	// MatchAny requires at least one keyword to appear.
	MatchAny MatchMode = "any"
)

// Query describes a tweet search. The zero value is invalid; at least
// FromUser or one keyword must be set.
type Query struct {
	FromUser       string
	Keywords       []string
	Match          MatchMode
	Since          string
	Until          string
	IncludeReplies bool
}

// String renders the query in the source's search syntax. Multi-word
// keywords are quoted so they match as phrases.
func (q Query) String() string {
	var parts []string

	if q.FromUser != "" {
		parts = append(parts, "from:"+strings.TrimPrefix(q.FromUser, "@"))
	}

	if term := q.keywordClause(); term != "" {
		parts = append(parts, term)
	}

	if q.Since != "" {
		parts = append(parts, "since:"+q.Since)
	}
	if q.Until != "" {
		parts = append(parts, "until:"+q.Until)
	}

	if !q.IncludeReplies {
		parts = append(parts, "-filter:replies")
	}

	return strings.Join(parts, " ")
}

func (q Query) keywordClause() string {
	terms := make([]string, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.ContainsAny(kw, " \t") {
			kw = `"` + kw + `"`
		}
		terms = append(terms, kw)
	}

	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	}

	if q.Match == MatchAny {
		return "(" + strings.Join(terms, " OR ") + ")"
	}
	return strings.Join(terms, " ")
}

// Validate checks the query before any network work happens, so a typo
// in a date fails immediately instead of after authentication.
func (q Query) Validate() error {
	if q.FromUser == "" && q.keywordClause() == "" {
		return errs.New(errs.TypeMalformedInput, "query needs a username or at least one keyword")
	}
	if q.Match != "" && q.Match != MatchAll && q.Match != MatchAny {
		return errs.Newf(errs.TypeMalformedInput, "unknown keyword match mode %q", q.Match)
	}
	return ValidateDateRange(q.Since, q.Until)
}

// ValidateDateRange checks that since and until parse as YYYY-MM-DD
// dates and are correctly ordered. Either may be empty.
func ValidateDateRange(since, until string) error {
	var sinceT, untilT time.Time
	var err error

	if since != "" {
		sinceT, err = time.Parse(dateLayout, since)
		if err != nil {
			return errs.Newf(errs.TypeMalformedInput, "invalid start date %q, expected YYYY-MM-DD", since)
		}
	}
	if until != "" {
		untilT, err = time.Parse(dateLayout, until)
		if err != nil {
			return errs.Newf(errs.TypeMalformedInput, "invalid end date %q, expected YYYY-MM-DD", until)
		}
	}

	if since != "" && until != "" && untilT.Before(sinceT) {
		return errs.Newf(errs.TypeMalformedInput, "end date %s is before start date %s", until, since)
	}

	return nil
}
