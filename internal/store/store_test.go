package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:         "u-1",
		Username:   "octocat",
		Provider:   "github",
		ProviderID: "583231",
	}
}

func TestOpen_MissingFileIsAnonymous(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "session.json"))

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
}

func TestOpen_CorruptFileIsAnonymous(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := Open(path)
	assert.False(t, s.Authenticated())
}

func TestSetAuthPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stax", "session.json")

	s := Open(path)
	require.NoError(t, s.SetAuth("tok-123", testUser()))
	assert.True(t, s.Authenticated())

	// A fresh open reads the same session back.
	reopened := Open(path)
	assert.True(t, reopened.Authenticated())
	assert.Equal(t, "tok-123", reopened.Token())
	require.NotNil(t, reopened.User())
	assert.Equal(t, "octocat", reopened.User().Username)
}

func TestSessionFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := Open(path)
	require.NoError(t, s.SetAuth("tok-123", testUser()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClearRemovesTokenAndUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := Open(path)
	require.NoError(t, s.SetAuth("tok-123", testUser()))
	require.NoError(t, s.Clear())

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())

	reopened := Open(path)
	assert.False(t, reopened.Authenticated())
}

func TestOwns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := Open(path)

	mine := &domain.Component{Slug: "data-grid", OwnerID: "583231"}
	theirs := &domain.Component{Slug: "modal", OwnerID: "999999"}

	// Anonymous sessions own nothing.
	assert.False(t, s.Owns(mine))

	require.NoError(t, s.SetAuth("tok-123", testUser()))
	assert.True(t, s.Owns(mine))
	assert.False(t, s.Owns(theirs))
	assert.False(t, s.Owns(nil))
}
