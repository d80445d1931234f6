package publisher

import (
	"os"
	"strings"
	"time"
)

const (
	branchPrefix    = "feature/"
	dateLayout      = "2006-01-02"
	maxSuffixLength = 24
)

// DisabledSuffix turns off the device suffix when used as the configured suffix
const DisabledSuffix = "none"

// BranchName returns feature/<date>[-<suffix>] for the UTC calendar date of t
func BranchName(t time.Time, suffix string) string {
	name := branchPrefix + t.UTC().Format(dateLayout)
	if suffix != "" {
		name += "-" + suffix
	}
	return name
}

// DateString returns the UTC calendar date of t as YYYY-MM-DD
func DateString(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// SanitizeSuffix lower-cases s, replaces runs of characters other than
// [a-z0-9] with a single "-", trims dashes and caps the result at 24
// characters. An empty result becomes "unknown".
func SanitizeSuffix(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxSuffixLength {
		out = strings.Trim(out[:maxSuffixLength], "-")
	}
	if out == "" {
		return "unknown"
	}
	return out
}

// ResolveSuffix turns the configured suffix into the one used in branch
// names: empty means the sanitised hostname, DisabledSuffix means none.
func ResolveSuffix(configured string) string {
	switch strings.TrimSpace(configured) {
	case DisabledSuffix:
		return ""
	case "":
		host, _ := os.Hostname()
		return SanitizeSuffix(host)
	default:
		return SanitizeSuffix(configured)
	}
}
