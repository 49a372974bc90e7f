package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/domain"
)

func createVersionForm() NewVersionModel {
	return NewNewVersionModel(nil, context.Background(),
		domain.Component{Name: "Data Grid", Slug: "data-grid"})
}

func TestNewVersionForm_InvalidSemverBlocksSubmit(t *testing.T) {
	form := createVersionForm()
	form.inputs[versionFieldVersion].SetValue("1.0")

	model, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	form = model.(NewVersionModel)

	assert.Nil(t, cmd, "nothing is sent for an invalid version")
	assert.False(t, form.submitting)
	assert.Equal(t, domain.ErrVersionFormat, form.fieldErr)
}

func TestNewVersionForm_ValidSubmitFires(t *testing.T) {
	form := createVersionForm()
	form.inputs[versionFieldVersion].SetValue("1.0.3")

	model, cmd := form.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	form = model.(NewVersionModel)

	require.NotNil(t, cmd)
	assert.True(t, form.submitting)
	assert.Empty(t, form.fieldErr)
}

func TestNewVersionForm_ReadmeFieldInCycle(t *testing.T) {
	form := createVersionForm()

	var model tea.Model = form
	for i := 0; i < versionFieldReadme; i++ {
		model, _ = model.(NewVersionModel).Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	form = model.(NewVersionModel)

	assert.Equal(t, versionFieldReadme, form.focused)
	assert.True(t, form.readme.Focused())
	assert.Contains(t, form.View(), "> README")
}

func TestNewVersionForm_EnterInReadmeInsertsNewline(t *testing.T) {
	form := createVersionForm()

	var model tea.Model = form
	for i := 0; i < versionFieldReadme; i++ {
		model, _ = model.(NewVersionModel).Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	form = model.(NewVersionModel)
	form.readme.SetValue("line one")

	model, _ = form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	form = model.(NewVersionModel)

	assert.False(t, form.submitting, "enter edits the textarea, it does not submit")
}
