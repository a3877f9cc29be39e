package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
)

const stdinEvents = `# warm up
INFO 300

THREAT 500
BOGUS 1
INFO 5000
rest 200
`

func TestRun_RequiresDatabase(t *testing.T) {
	_, _, err := execute(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRun_StreamsEventsFromStdin(t *testing.T) {
	db := filepath.Join(t.TempDir(), "boundary.db")

	out, _, err := executeWithInput(t, strings.NewReader(stdinEvents), "run", "--db", db, "--run", "live-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Run: live-1 (GU_BOUNDARY_CORE)")
	assert.Contains(t, out, "Reading events from stdin")
	assert.Contains(t, out, `line 5 "BOGUS 1"`)
	assert.Contains(t, out, `line 6 "INFO 5000"`)
	assert.Contains(t, out, "3 step(s), 2 rejected")

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	steps, err := s.ReadSteps(context.Background(), "live-1")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, sphere.Event{Kind: sphere.EventInfo, Intensity: 300}, steps[0].Event)
	assert.Equal(t, sphere.Event{Kind: sphere.EventThreat, Intensity: 500}, steps[1].Event)
	assert.Equal(t, sphere.Event{Kind: sphere.EventRest, Intensity: 200}, steps[2].Event)
}

func TestRun_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "boundary.db")

	out, _, err := executeWithInput(t, strings.NewReader(stdinEvents),
		"--format", "json", "run", "--db", db, "--run", "live-1")
	require.NoError(t, err)

	var result RunResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "live-1", result.RunToken)
	assert.Len(t, result.Steps, 3)
	assert.Empty(t, result.Rejected)

	require.Len(t, result.InputErrors, 2)
	assert.Equal(t, 5, result.InputErrors[0].Line)
	assert.Contains(t, result.InputErrors[0].Error, "unknown event kind")
	assert.Equal(t, 6, result.InputErrors[1].Line)
	assert.Contains(t, result.InputErrors[1].Error, "intensity 5000")
}

func TestRun_QuotaRejectsButSucceeds(t *testing.T) {
	db := filepath.Join(t.TempDir(), "boundary.db")

	out, _, err := executeWithInput(t, strings.NewReader("INFO 10\nINFO 20\n"),
		"--format", "json", "run", "--db", db, "--max-steps", "1")
	require.NoError(t, err)

	var result RunResult
	decodeResponse(t, out, &result)
	assert.Len(t, result.Steps, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "QUOTA_EXCEEDED", result.Rejected[0].Code)
	assert.Equal(t, 1, result.Rejected[0].Position)
}

func TestRun_EmptyInputOpensRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "boundary.db")

	out, _, err := execute(t, "run", "--db", db, "--run", "idle")
	require.NoError(t, err)
	assert.Contains(t, out, "0 step(s), 0 rejected, final STABLE")

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	run, err := s.ReadRun(context.Background(), "idle")
	require.NoError(t, err)
	assert.Equal(t, sphere.DefaultName, run.Name)
}

func TestFeedEvents_SkipsCommentsAndBlankLines(t *testing.T) {
	s, err := newSession(context.Background(), sessionConfig{RunToken: "feed"})
	require.NoError(t, err)
	defer s.Close()

	s.Open(sphere.DefaultConfig())
	errs := feedEvents(strings.NewReader("\n# note\n  INFO 1  \nnot an event\n"), s)
	require.NoError(t, s.Serve(context.Background()))

	require.Len(t, errs, 1)
	assert.Equal(t, 4, errs[0].Line)
	assert.Len(t, s.Steps, 1)
}

func TestSession_CancelledServeStillWritesQueuedEvents(t *testing.T) {
	db := filepath.Join(t.TempDir(), "boundary.db")
	s, err := newSession(context.Background(), sessionConfig{Database: db, RunToken: "interrupted"})
	require.NoError(t, err)
	defer s.Close()

	s.Open(sphere.DefaultConfig())
	require.True(t, s.Ingest(sphere.Event{Kind: sphere.EventInfo, Intensity: 300}))
	require.True(t, s.Ingest(sphere.Event{Kind: sphere.EventThreat, Intensity: 500}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Serve(ctx))

	require.NoError(t, s.OpenErr())
	assert.Empty(t, s.Rejected)
	require.Len(t, s.Steps, 2)
	assert.False(t, s.Ingest(sphere.Event{Kind: sphere.EventRest, Intensity: 10}), "intake stops after cancel")

	steps, err := s.store.ReadSteps(context.Background(), "interrupted")
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}
