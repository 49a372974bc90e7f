package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/stax/internal/domain"
)

func createTestBuild(status string) *domain.BuildJob {
	return &domain.BuildJob{
		ID:        "job-7",
		Component: "data-grid",
		Version:   "1.0.3",
		Status:    status,
	}
}

func createWatchModel() BuildWatchModel {
	return NewBuildWatchModel(nil, context.Background(),
		domain.Component{Name: "Data Grid", Slug: "data-grid"}, "1.0.3", "job-7")
}

func TestBuildWatch_PendingSchedulesNextPoll(t *testing.T) {
	watch := createWatchModel()

	model, cmd := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildRunning)})
	watch = model.(BuildWatchModel)

	assert.NotNil(t, cmd, "a pending build keeps the poll loop alive")
	assert.Equal(t, domain.BuildRunning, watch.build.Status)
}

func TestBuildWatch_TerminalStopsPolling(t *testing.T) {
	watch := createWatchModel()

	model, cmd := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildSuccess)})
	watch = model.(BuildWatchModel)

	assert.Nil(t, cmd, "no poll is scheduled after a terminal status")
	assert.Equal(t, domain.BuildSuccess, watch.build.Status)
}

func TestBuildWatch_StaleGenerationDiscarded(t *testing.T) {
	watch := createWatchModel()

	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildSuccess)})
	watch = model.(BuildWatchModel)

	// A rebuild bumps the generation; results from the old loop must not
	// overwrite the new job's state.
	model, cmd := watch.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	watch = model.(BuildWatchModel)
	require.NotNil(t, cmd)
	require.Equal(t, 1, watch.generation)

	model, _ = watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildError)})
	watch = model.(BuildWatchModel)

	assert.NotEqual(t, domain.BuildError, watch.build.Status, "stale poll result was applied")
}

func TestBuildWatch_PollFailureKeepsLoopAlive(t *testing.T) {
	watch := createWatchModel()

	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildRunning)})
	watch = model.(BuildWatchModel)

	model, cmd := watch.Update(buildWatchErrorMsg{generation: 0, err: assert.AnError})
	watch = model.(BuildWatchModel)

	assert.NotNil(t, cmd, "a transient fetch failure reschedules the poll")
	assert.Error(t, watch.err)
	assert.Equal(t, domain.BuildRunning, watch.build.Status, "last snapshot survives the failure")
}

func TestBuildWatch_InitialFetchFailureStops(t *testing.T) {
	watch := createWatchModel()

	model, cmd := watch.Update(buildWatchErrorMsg{generation: 0, err: assert.AnError})
	watch = model.(BuildWatchModel)

	assert.Nil(t, cmd, "with no snapshot there is nothing to poll")
	assert.Error(t, watch.err)
}

func TestBuildWatch_StalePollTickIgnored(t *testing.T) {
	watch := createWatchModel()

	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildSuccess)})
	watch = model.(BuildWatchModel)

	// Even if an old tick fires after the terminal status, it must not
	// restart fetching.
	_, cmd := watch.Update(buildPollMsg{generation: -1})
	assert.Nil(t, cmd)
}

func TestBuildWatch_RebuildOnlyFromTerminal(t *testing.T) {
	watch := createWatchModel()

	// Still running: rebuild is refused.
	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildRunning)})
	watch = model.(BuildWatchModel)
	model, cmd := watch.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	watch = model.(BuildWatchModel)
	assert.Nil(t, cmd)
	assert.False(t, watch.rebuilding)

	// Failed: rebuild proceeds on a new generation.
	model, _ = watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildError)})
	watch = model.(BuildWatchModel)
	model, cmd = watch.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	watch = model.(BuildWatchModel)
	require.NotNil(t, cmd)
	assert.True(t, watch.rebuilding)
	assert.Equal(t, 1, watch.generation)
}

func TestBuildWatch_RebuildQueuedRestartsLoop(t *testing.T) {
	watch := createWatchModel()

	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildError)})
	watch = model.(BuildWatchModel)
	model, _ = watch.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	watch = model.(BuildWatchModel)

	model, cmd := watch.Update(rebuildQueuedMsg{generation: watch.generation, jobID: "job-8"})
	watch = model.(BuildWatchModel)

	require.NotNil(t, cmd, "the new job is fetched immediately")
	assert.False(t, watch.rebuilding)
	assert.Equal(t, "job-8", watch.jobID)
	assert.Nil(t, watch.build, "old job state is gone")
}

func TestBuildWatch_EscOrphansInFlightPolls(t *testing.T) {
	watch := createWatchModel()

	model, _ := watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildRunning)})
	watch = model.(BuildWatchModel)

	model, cmd := watch.Update(tea.KeyMsg{Type: tea.KeyEsc})
	watch = model.(BuildWatchModel)
	require.NotNil(t, cmd)
	assert.IsType(t, CloseWatchMsg{}, cmd())

	// The poll that was in flight when the user left resolves into a
	// model that no longer accepts it.
	_, cmd = watch.Update(buildFetchedMsg{generation: 0, build: createTestBuild(domain.BuildError)})
	assert.Nil(t, cmd)
	assert.Equal(t, domain.BuildRunning, watch.build.Status)
}
