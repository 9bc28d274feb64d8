package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zyra-incident-service/internal/observability"
	"github.com/couchcryptid/zyra-incident-service/internal/service"
)

func setupLocalOnly(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LEDGER_ENABLED", "false")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOCAL_STORE_PATH", filepath.Join(dir, "incidents.json"))
	t.Setenv("SEED_PATH", filepath.Join(dir, "seed.json"))

	orig := newMetrics
	newMetrics = observability.NewMetricsForTesting
	t.Cleanup(func() { newMetrics = orig })
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ReportThenQuery(t *testing.T) {
	setupLocalOnly(t)

	out, err := run(t, "report",
		"--farmer", "F-1001", "--lga", "Ikeja", "--state", "Lagos",
		"--lat", "6.6", "--lon", "3.35", "--crop", "maize", "--category", "pest",
		"--description", "severe armyworm on young plants")
	require.NoError(t, err)
	assert.Contains(t, out, "queued locally")
	assert.Contains(t, out, "A resource request has been raised for agrochemical.")

	out, err = run(t, "query-lga", "Ikeja", "--json")
	require.NoError(t, err)

	var sum service.AreaSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 1, sum.TotalIncidents)
	assert.Equal(t, 1, sum.HighSeverityCount)

	out, err = run(t, "query-lga", "ikeja")
	require.NoError(t, err)
	assert.Contains(t, out, "No incidents found for ikeja")

	out, err = run(t, "query-lga", "ikeja", "--ignore-case")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 incidents in ikeja")
}

func TestCLI_ReportRejectsInvalidInput(t *testing.T) {
	setupLocalOnly(t)

	_, err := run(t, "report", "--farmer", "F-1", "--lga", "Ikeja", "--crop", "yam", "--category", "pest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop")
}

func TestCLI_SeedAndStats(t *testing.T) {
	dir := setupLocalOnly(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.json"), []byte(`[
  {"farmer_id": "F-1", "lga": "Ikeja", "state": "Lagos", "geo": {"lat": 6.6, "lon": 3.35}, "crop": "maize", "category": "pest", "description": "armyworm"},
  {"farmer_id": "F-2", "lga": "Kano", "state": "Kano", "geo": {"lat": 12.0, "lon": 8.5}, "crop": "rice", "category": "drought", "description": "dry spell"}
]`), 0o600))

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 incidents, 0 rejected")

	out, err = run(t, "stats")
	require.NoError(t, err)
	var st service.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 2, st.TotalIncidents)
	assert.Equal(t, map[string]int{"Ikeja": 1, "Kano": 1}, st.ByLGA)

	out, err = run(t, "list", "--high-severity")
	require.NoError(t, err)
	assert.Contains(t, out, "rice | drought | Severity: 80")
	assert.NotContains(t, out, "pest")
}

func TestCLI_GetUnknownIncident(t *testing.T) {
	setupLocalOnly(t)

	_, err := run(t, "get", "inc-000404")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCLI_PingWithLedgerDisabled(t *testing.T) {
	setupLocalOnly(t)

	_, err := run(t, "ping")
	require.ErrorIs(t, err, service.ErrLedgerDisabled)
}
