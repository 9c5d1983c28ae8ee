package validation

import (
	"regexp"
	"strings"
)

// Keywords that must never appear in an executable query, matched as
// whole words, case-insensitive.
var dangerousKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "INSERT", "UPDATE",
	"CREATE", "ALTER", "GRANT", "REVOKE", "EXECUTE",
	"EXEC", "CALL", "MERGE", "RENAME",
}

var keywordPatterns = compileKeywordPatterns()

func compileKeywordPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(dangerousKeywords))
	for _, kw := range dangerousKeywords {
		patterns = append(patterns, regexp.MustCompile(`\b`+kw+`\b`))
	}
	return patterns
}

// IsSafeQuery reports whether sql is a single read-only SELECT statement.
// It is a syntactic allow/deny gate only: it does not replace backend-side
// parameterization or privilege restriction. Returns false on any
// violation, never an error.
func IsSafeQuery(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return false
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return false
	}

	for _, re := range keywordPatterns {
		if re.MatchString(upper) {
			return false
		}
	}

	// No multi-statement batching: at most one semicolon, and only as
	// the final character.
	switch strings.Count(trimmed, ";") {
	case 0:
	case 1:
		if !strings.HasSuffix(trimmed, ";") {
			return false
		}
	default:
		return false
	}

	return true
}
