package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/domain"
)

func createTestRepo() domain.GitHubRepo {
	return domain.GitHubRepo{
		ID:            1,
		Name:          "widgets",
		FullName:      "acme/widgets",
		DefaultBranch: "main",
		Owner:         domain.GitHubRepoOwner{Login: "acme", ID: 7},
	}
}

func createLinkModelInBrowse(t *testing.T) LinkModel {
	t.Helper()
	link := NewLinkModel(nil, context.Background(), domain.Component{Name: "Data Grid", Slug: "data-grid"})

	model, _ := link.Update(reposLoadedMsg{repos: []domain.GitHubRepo{createTestRepo()}})
	link = model.(LinkModel)

	// Enter the selected repo; the fetch command is not executed here,
	// its result is injected below.
	model, cmd := link.Update(tea.KeyMsg{Type: tea.KeyEnter})
	link = model.(LinkModel)
	require.NotNil(t, cmd)
	require.True(t, link.loading)

	model, _ = link.Update(folderLoadedMsg{
		seq:  link.browseSeq,
		path: "",
		entries: []domain.GitHubContent{
			{Name: "packages", Path: "packages", Type: "dir"},
			{Name: "README.md", Path: "README.md", Type: "file"},
		},
		commitSHA: "aaaa111122223333",
		branches: []domain.GitHubBranch{
			{Name: "main"},
			{Name: "develop"},
		},
	})
	return model.(LinkModel)
}

func TestLinkModel_EntriesAndCommitApplyTogether(t *testing.T) {
	link := createLinkModelInBrowse(t)

	assert.Equal(t, stepBrowse, link.step)
	assert.Equal(t, "aaaa111122223333", link.commitSHA)
	assert.Len(t, link.entries, 2)
	assert.Len(t, link.dirEntries(), 1, "only directories are enterable")
	assert.Equal(t, "main", link.currentBranch())
}

func TestLinkModel_StaleFolderResponseDropped(t *testing.T) {
	link := createLinkModelInBrowse(t)

	model, _ := link.Update(folderLoadedMsg{
		seq:       link.browseSeq - 1,
		path:      "stale/dir",
		commitSHA: "stalestale",
	})
	link = model.(LinkModel)

	assert.Equal(t, "", link.dirPath)
	assert.Equal(t, "aaaa111122223333", link.commitSHA, "stale listing must not overwrite state")
}

func TestLinkModel_BranchSwitchResetsPath(t *testing.T) {
	link := createLinkModelInBrowse(t)

	// Descend into a subfolder first.
	model, cmd := link.Update(tea.KeyMsg{Type: tea.KeyEnter})
	link = model.(LinkModel)
	require.NotNil(t, cmd)
	model, _ = link.Update(folderLoadedMsg{
		seq:       link.browseSeq,
		path:      "packages",
		entries:   []domain.GitHubContent{{Name: "grid", Path: "packages/grid", Type: "dir"}},
		commitSHA: "aaaa111122223333",
	})
	link = model.(LinkModel)
	require.Equal(t, "packages", link.dirPath)

	// Switch branches; the flow restarts at the new branch's root.
	model, cmd = link.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	link = model.(LinkModel)
	require.NotNil(t, cmd)
	assert.Equal(t, "develop", link.currentBranch())

	model, _ = link.Update(folderLoadedMsg{
		seq:       link.browseSeq,
		path:      "",
		entries:   []domain.GitHubContent{{Name: "src", Path: "src", Type: "dir"}},
		commitSHA: "bbbb444455556666",
	})
	link = model.(LinkModel)

	assert.Equal(t, "", link.dirPath, "branch switch returns to the repo root")
	assert.Equal(t, "bbbb444455556666", link.commitSHA, "commit follows the new branch")
}

func TestLinkModel_FreeFormRefStartsAtRoot(t *testing.T) {
	link := createLinkModelInBrowse(t)

	model, _ := link.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("B")})
	link = model.(LinkModel)
	require.True(t, link.branchEntry)

	link.branchInput.SetValue("release/2.x")
	model, cmd := link.Update(tea.KeyMsg{Type: tea.KeyEnter})
	link = model.(LinkModel)
	require.NotNil(t, cmd)

	assert.False(t, link.branchEntry)
	assert.Equal(t, "release/2.x", link.currentBranch())
	assert.True(t, link.loading, "typed ref triggers a fresh root listing")
}

func TestLinkModel_RefEntryEscKeepsBranch(t *testing.T) {
	link := createLinkModelInBrowse(t)

	model, _ := link.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("B")})
	link = model.(LinkModel)
	link.branchInput.SetValue("typo-branch")

	model, cmd := link.Update(tea.KeyMsg{Type: tea.KeyEsc})
	link = model.(LinkModel)

	assert.Nil(t, cmd)
	assert.False(t, link.branchEntry)
	assert.Equal(t, "main", link.currentBranch(), "cancel leaves the branch untouched")
}

func TestLinkModel_BackDiscardsBrowseState(t *testing.T) {
	link := createLinkModelInBrowse(t)

	model, _ := link.Update(tea.KeyMsg{Type: tea.KeyEsc})
	link = model.(LinkModel)

	assert.Equal(t, stepRepo, link.step)
	assert.Nil(t, link.repo)
	assert.Empty(t, link.commitSHA)
	assert.Empty(t, link.entries)
	assert.Empty(t, link.dirPath)
	assert.Nil(t, link.branches)
}

func TestLinkModel_ConfirmStepAndBack(t *testing.T) {
	link := createLinkModelInBrowse(t)

	model, _ := link.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	link = model.(LinkModel)
	assert.Equal(t, stepConfirm, link.step)

	// Backing out of confirm keeps the browse state intact.
	model, _ = link.Update(tea.KeyMsg{Type: tea.KeyEsc})
	link = model.(LinkModel)
	assert.Equal(t, stepBrowse, link.step)
	assert.Equal(t, "aaaa111122223333", link.commitSHA)
}

func TestLinkModel_CancelFromRepoList(t *testing.T) {
	link := NewLinkModel(nil, context.Background(), domain.Component{Slug: "data-grid"})

	model, _ := link.Update(reposLoadedMsg{repos: []domain.GitHubRepo{createTestRepo()}})
	link = model.(LinkModel)

	_, cmd := link.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, CancelLinkMsg{}, cmd())
}
