package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tabun-api/lib/models"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := readConfig(filepath.Join(dir, "tabun.json5"))
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)

	err = os.WriteFile(filepath.Join(dir, "tabun.json5"), []byte(`{
	// anonymous by default
	base_url: "https://tabun.example.org",
	query_interval_ms: 1500,
}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "tabun.local.json5"), []byte(`{username: "viewer", password: "secret"}`), 0600)
	require.NoError(t, err)

	cfg, err = readConfig(filepath.Join(dir, "tabun.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://tabun.example.org", cfg.BaseURL)
	require.Equal(t, "viewer", cfg.Username)
	require.Equal(t, 1500*time.Millisecond, cfg.queryInterval())
	require.Equal(t, 10*time.Minute, cfg.cacheTTL())
}

func TestActivityTarget(t *testing.T) {
	testCases := []struct {
		item     models.ActivityItem
		expected string
	}{
		{
			item:     models.ActivityItem{Blog: "news", PostID: 3, CommentID: 9},
			expected: "/blog/news/3.html#comment9",
		},
		{
			item:     models.ActivityItem{PostID: 3},
			expected: "/blog/3.html",
		},
		{
			item:     models.ActivityItem{Blog: "art", Title: "Art"},
			expected: "/blog/art/",
		},
		{
			item:     models.ActivityItem{Title: "someone"},
			expected: "someone",
		},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, activityTarget(&test.item))
	}
}
