// Package sanitize provides the string-cleaning half of the request-input
// defense layer. All functions are total: any input yields a cleaned string,
// possibly empty, and re-applying a function to its own output is a no-op.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSearchTermLen caps search terms after metacharacter stripping.
const maxSearchTermLen = 100

// markupPolicy allows only basic formatting tags; on <a> only href survives.
var markupPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong")
	p.AllowAttrs("href").OnElements("a")
	// Anchors survive without attributes too; a with a rejected href keeps
	// its text inside the tag rather than being stripped.
	p.AllowNoAttrs().OnElements("a")
	// Not AllowStandardURLs: that would inject rel="nofollow", and href must
	// stay the only attribute on surviving anchors.
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}()

var javascriptScheme = regexp.MustCompile(`(?i)javascript:`)

// sqlProcPrefix matches stored-procedure prefixes regardless of case.
var sqlProcPrefix = regexp.MustCompile(`(?i)xp_|sp_`)

var angleBrackets = strings.NewReplacer("<", "", ">", "")

var searchMetachars = strings.NewReplacer("'", "", `"`, "", `\`, "")

// Markup strips every tag outside the allow-list {b, i, em, strong, a} and
// drops every attribute except href on surviving anchors. Malformed markup is
// cleaned best-effort, never rejected.
func Markup(input string) string {
	return markupPolicy.Sanitize(input)
}

// PlainText removes angle brackets and the javascript: scheme prefix, then
// trims surrounding whitespace. The scheme is stripped until no occurrence
// remains so nested payloads cannot reassemble one.
func PlainText(input string) string {
	out := angleBrackets.Replace(input)
	for javascriptScheme.MatchString(out) {
		out = javascriptScheme.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// SearchTerm neutralizes SQL metacharacters in a user-supplied search string.
// The steps run in a fixed order: quotes and backslashes first, then comment
// markers and stored-procedure prefixes, then truncation, then trimming.
// The marker pass repeats until the string is stable, so removals that
// reassemble another marker (as in "-/**/-") cannot survive. Truncation after
// stripping keeps the length budget from being spent on characters that are
// removed anyway.
func SearchTerm(input string) string {
	out := searchMetachars.Replace(input)
	for {
		prev := out
		out = strings.ReplaceAll(out, "--", "")
		out = strings.ReplaceAll(out, "/*", "")
		out = strings.ReplaceAll(out, "*/", "")
		out = sqlProcPrefix.ReplaceAllString(out, "")
		if out == prev {
			break
		}
	}
	if len(out) > maxSearchTermLen {
		out = out[:maxSearchTermLen]
	}
	return strings.TrimSpace(out)
}
