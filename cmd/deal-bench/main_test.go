package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"surrealdb_bench_output.json", "SurrealDB"},
		{"results/mongodb_bench_output.json", "MongoDB"},
		{"ArangoDB_bench_output.json", "ArangoDB"},
		{"postgresql_bench_output.json", "PostgreSQL"},
		{"nightly.json", "nightly"},
		{"/tmp/couchdb_bench_output.json", "couchdb_bench_output"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, systemName(tt.path))
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(newMultiHandler(&slog.HandlerOptions{Level: slog.LevelInfo}, &a, &b))

	logger.Debug("hidden")
	logger.With("backend", "dry").Info("Run completed", "run", 2)

	for _, out := range []string{a.String(), b.String()} {
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `msg="Run completed"`)
		assert.Contains(t, out, "backend=dry")
		assert.Contains(t, out, "run=2")
	}
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "deal-bench dev\n", out.String())
}
