package logline

import (
	"regexp"
	"strings"
)

// Cleaning suppresses and rewrites noisy line patterns seen in the SVN,
// Jenkins and Jira logs this dashboard aggregates. The steps run in a fixed
// order: drops first, then the truncation of externals dumps, then the
// substitutions. Later substitutions rely on earlier ones having run (URL
// shortening must see already-masked credentials). Every substitution is a
// fixed point, so cleaning an already-cleaned line is a no-op.

const (
	truncateAt      = 100
	truncatedMarker = " [truncated]"
	separatorMarker = "──────────"

	// Continuation lines of an externals dump carry the repository path.
	externalsPathPrefix = "/srv/repos/"
)

var (
	stackFramePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d+$`),
		regexp.MustCompile(`^\s*at `),
		regexp.MustCompile(`^Caused by:`),
	}

	// Repetitive diagnostics that add nothing when repeated hundreds of
	// times per day.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:INFO|DEBUG)?:?\s*(?:keep-?alive|heartbeat) (?:received|sent|ok)`),
		regexp.MustCompile(`^svn: warning: W\d+: .*is already a working copy`),
		regexp.MustCompile(`(?i)^waiting for next available executor`),
	}

	externalsDumpRe = regexp.MustCompile(`^Fetching external item into `)

	// Substitutions, in order. Credential masking runs before URL
	// shortening so a shortened URL can never re-expose a password.
	passwordFlagRe = regexp.MustCompile(`(--password[ =])\S+`)
	urlCredsRe     = regexp.MustCompile(`://[^/@\s:]+:[^/@\s]+@`)
	longURLRe      = regexp.MustCompile(`https?://\S{70,}`)
	longDashesRe   = regexp.MustCompile(`-{10,}`)

	classPrefixes = []struct{ full, short string }{
		{"org.apache.subversion.", "o.a.s."},
		{"org.tmatesoft.svn.", "o.t.s."},
		{"com.atlassian.jira.", "c.a.j."},
		{"org.jenkinsci.plugins.", "o.j.p."},
		{"hudson.model.", "h.m."},
	}
)

// Clean applies the noise-reduction transform to a single text line.
// The second return value is false when the line should be suppressed
// entirely. Clean is idempotent.
func Clean(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	for _, re := range stackFramePatterns {
		if re.MatchString(trimmed) {
			return "", false
		}
	}
	for _, re := range noisePatterns {
		if re.MatchString(trimmed) {
			return "", false
		}
	}

	if externalsDumpRe.MatchString(trimmed) {
		if len(trimmed) > truncateAt && !strings.HasSuffix(trimmed, truncatedMarker) {
			trimmed = trimmed[:truncateAt] + truncatedMarker
		}
	} else if strings.HasPrefix(trimmed, externalsPathPrefix) {
		// Continuation of a truncated externals dump.
		return "", false
	}

	trimmed = passwordFlagRe.ReplaceAllString(trimmed, "${1}******")
	trimmed = urlCredsRe.ReplaceAllString(trimmed, "://***:***@")
	trimmed = longURLRe.ReplaceAllStringFunc(trimmed, func(u string) string {
		return u[:60] + "…"
	})
	for _, p := range classPrefixes {
		trimmed = strings.ReplaceAll(trimmed, p.full, p.short)
	}
	trimmed = longDashesRe.ReplaceAllString(trimmed, separatorMarker)

	return trimmed, true
}
