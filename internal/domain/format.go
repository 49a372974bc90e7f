package domain

import (
	"fmt"
	"time"
)

// ShortSHA truncates a commit SHA to the conventional 7 characters.
func ShortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

// Truncate shortens text to maxLen runes, appending an ellipsis when cut.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// FormatDate renders an ISO8601 timestamp as a short human date, or an
// em dash when the timestamp does not parse.
func FormatDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return "—"
	}
	return t.Format("2 Jan 2006")
}

// FormatRelativeTime renders an ISO8601 timestamp relative to now
// ("just now", "5m ago", "3d ago").
func FormatRelativeTime(iso string) string {
	return formatRelativeTo(iso, time.Now())
}

func formatRelativeTo(iso string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return "—"
	}
	seconds := int64(now.Sub(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%dd ago", seconds/86400)
	case seconds < 2592000:
		return fmt.Sprintf("%dw ago", seconds/604800)
	case seconds < 31536000:
		return fmt.Sprintf("%dmo ago", seconds/2592000)
	default:
		return fmt.Sprintf("%dy ago", seconds/31536000)
	}
}

// BuildStatusLabel maps a build status to its display label.
func BuildStatusLabel(status string) string {
	switch status {
	case BuildQueued:
		return "Queued"
	case BuildRunning:
		return "Building"
	case BuildSuccess:
		return "Success"
	case BuildError:
		return "Failed"
	default:
		return status
	}
}

// VersionBuildStateLabel maps a version build state to its display label.
func VersionBuildStateLabel(state string) string {
	switch state {
	case VersionBuildNone:
		return "Not built"
	case VersionBuildQueued:
		return "Build queued"
	case VersionBuildRunning:
		return "Building"
	case VersionBuildReady:
		return "Ready"
	case VersionBuildError:
		return "Build failed"
	default:
		return state
	}
}
