package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "a1b2c3d", ShortSHA("a1b2c3d4e5f6a7b8c9d0"))
	assert.Equal(t, "abc", ShortSHA("abc"))
	assert.Equal(t, "", ShortSHA(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hell…", Truncate("hello world", 5))
	// Rune-safe, not byte-safe
	assert.Equal(t, "héll…", Truncate("héllo world", 5))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		iso  string
		want string
	}{
		{"2026-03-10T11:59:30Z", "just now"},
		{"2026-03-10T11:55:00Z", "5m ago"},
		{"2026-03-10T09:00:00Z", "3h ago"},
		{"2026-03-07T12:00:00Z", "3d ago"},
		{"2026-02-24T12:00:00Z", "2w ago"},
		{"2025-12-10T12:00:00Z", "3mo ago"},
		{"2024-03-10T12:00:00Z", "2y ago"},
		{"not-a-timestamp", "—"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatRelativeTo(c.iso, now), "for %s", c.iso)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "5 Jun 2026", FormatDate("2026-06-05T08:30:00Z"))
	assert.Equal(t, "—", FormatDate("garbage"))
}

func TestBuildStatusHelpers(t *testing.T) {
	assert.True(t, IsTerminalBuild(BuildSuccess))
	assert.True(t, IsTerminalBuild(BuildError))
	assert.False(t, IsTerminalBuild(BuildQueued))
	assert.False(t, IsTerminalBuild(BuildRunning))

	assert.True(t, IsPendingBuild(BuildQueued))
	assert.True(t, IsPendingBuild(BuildRunning))
	assert.False(t, IsPendingBuild(BuildSuccess))
}
