package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSessionIDPersistsAcrossReopen(t *testing.T) {
	s, path := testStore(t)

	first, err := s.SessionID()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// Stable within one handle.
	again, err := s.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	after, err := reopened.SessionID()
	require.NoError(t, err)
	assert.Equal(t, first, after, "session survives process restarts")
}

func TestResetStartsFreshSession(t *testing.T) {
	s, _ := testStore(t)

	first, err := s.SessionID()
	require.NoError(t, err)
	require.NoError(t, s.AddRecentSearch("london"))

	require.NoError(t, s.Reset())

	second, err := s.SessionID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestRecentSearchesOrderDedupeAndBound(t *testing.T) {
	s, _ := testStore(t)

	require.NoError(t, s.AddRecentSearch("london"))
	require.NoError(t, s.AddRecentSearch("paris"))
	require.NoError(t, s.AddRecentSearch("london"))

	searches, err := s.RecentSearches()
	require.NoError(t, err)
	assert.Equal(t, []string{"london", "paris"}, searches, "repeat moves to the front, no duplicate")

	// Blank and whitespace queries are ignored.
	require.NoError(t, s.AddRecentSearch(""))
	require.NoError(t, s.AddRecentSearch("   "))
	searches, err = s.RecentSearches()
	require.NoError(t, err)
	assert.Len(t, searches, 2)

	// The history is bounded; the oldest entries fall off.
	for _, q := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		require.NoError(t, s.AddRecentSearch(q))
	}
	searches, err = s.RecentSearches()
	require.NoError(t, err)
	assert.Len(t, searches, maxRecentSearches)
	assert.Equal(t, "j", searches[0])
	assert.NotContains(t, searches, "london", "oldest entries are trimmed")
}

func TestOpenRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o644))

	s, err := Open(path)
	require.NoError(t, err, "a corrupt file is recreated, not surfaced")
	defer s.Close()

	id, err := s.SessionID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
