package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/api"
	"github.com/avikr/stax/internal/domain"
	"github.com/avikr/stax/internal/store"
)

// createTestSession creates an anonymous session backed by a temp file.
func createTestSession(t *testing.T) *store.Session {
	t.Helper()
	return store.Open(filepath.Join(t.TempDir(), "session.json"))
}

func createTestPage(names ...string) *api.ComponentList {
	components := make([]domain.Component, len(names))
	for i, name := range names {
		components[i] = domain.Component{Name: name, Slug: domain.Slugify(name)}
	}
	return &api.ComponentList{Page: 1, Limit: 20, Total: len(names), Components: components}
}

func TestBrowseModel_AppliesLoadedPage(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)

	model, _ := browse.Update(componentsLoadedMsg{seq: browse.fetchSeq, page: createTestPage("Data Grid", "Modal")})
	browse = model.(BrowseModel)

	assert.False(t, browse.loading)
	assert.Equal(t, 2, browse.total)
	require.Len(t, browse.list.Items(), 2)
}

func TestBrowseModel_DiscardsStaleResponse(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)

	// Apply the current page, then deliver a response from an older fetch.
	model, _ := browse.Update(componentsLoadedMsg{seq: browse.fetchSeq, page: createTestPage("Data Grid")})
	browse = model.(BrowseModel)

	model, _ = browse.Update(componentsLoadedMsg{seq: browse.fetchSeq - 1, page: createTestPage("Old A", "Old B", "Old C")})
	browse = model.(BrowseModel)

	assert.Equal(t, 1, browse.total, "stale response must not overwrite newer state")
	assert.Len(t, browse.list.Items(), 1)
}

func TestBrowseModel_RefreshKeyReturnsBumpedSequence(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)
	before := browse.fetchSeq

	model, cmd := browse.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	browse = model.(BrowseModel)

	require.NotNil(t, cmd)
	assert.Equal(t, before+1, browse.fetchSeq, "the returned model carries the new sequence")
	assert.True(t, browse.loading)
}

func TestBrowseModel_RefetchSupersedesInFlight(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)
	inFlight := browse.fetchSeq

	cmd := (&browse).refetch()
	require.NotNil(t, cmd)

	// The earlier fetch resolves after the refetch started; it is dropped.
	model, _ := browse.Update(componentsLoadedMsg{seq: inFlight, page: createTestPage("Old")})
	browse = model.(BrowseModel)
	assert.True(t, browse.loading)
	assert.Empty(t, browse.list.Items())

	model, _ = browse.Update(componentsLoadedMsg{seq: browse.fetchSeq, page: createTestPage("New")})
	browse = model.(BrowseModel)
	assert.False(t, browse.loading)
	assert.Len(t, browse.list.Items(), 1)
}

func TestBrowseModel_TotalPages(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)

	assert.Equal(t, 1, browse.totalPages(), "empty listing still has one page")

	browse.total = 45
	assert.Equal(t, 3, browse.totalPages())

	browse.total = 40
	assert.Equal(t, 2, browse.totalPages())
}

func TestBrowseModel_StaleErrorDiscarded(t *testing.T) {
	browse := NewBrowseModel(nil, createTestSession(t), context.Background(), 20)

	model, _ := browse.Update(componentsLoadedMsg{seq: browse.fetchSeq, page: createTestPage("Data Grid")})
	browse = model.(BrowseModel)

	model, _ = browse.Update(componentsErrorMsg{seq: browse.fetchSeq - 1, err: assert.AnError})
	browse = model.(BrowseModel)

	assert.NoError(t, browse.err, "stale error must not surface")
}
