package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
)

// BackendInfo describes one configured backend for display.
type BackendInfo struct {
	Type       connection.DatabaseType
	Registered bool
	// Connection is the redacted connection string, empty for the dry backend.
	Connection string
	// Err is the validation error of the connection parameters.
	Err error
}

// ConnectionUseCase inspects and tests backend connections.
type ConnectionUseCase struct {
	registry *backend.Registry
}

// NewConnectionUseCase creates a new connection use case.
func NewConnectionUseCase(registry *backend.Registry) *ConnectionUseCase {
	return &ConnectionUseCase{registry: registry}
}

// Describe lists every backend with its redacted connection string.
func (uc *ConnectionUseCase) Describe(cfg *config.Config) []BackendInfo {
	registered := make(map[connection.DatabaseType]bool)
	for _, t := range uc.registry.List() {
		registered[t] = true
	}

	out := make([]BackendInfo, 0, len(connection.DatabaseTypes))
	for _, t := range connection.DatabaseTypes {
		info := BackendInfo{Type: t, Registered: registered[t]}
		conn, err := cfg.Backends.Get(t)
		if err != nil {
			info.Err = err
		} else if conn != nil {
			info.Connection = conn.Redact()
			info.Err = conn.Validate()
		}
		out = append(out, info)
	}
	return out
}

// TestConnection connects to one backend and reads its version.
func (uc *ConnectionUseCase) TestConnection(ctx context.Context, cfg *config.Config, t connection.DatabaseType) (*connection.TestResult, error) {
	conn, err := cfg.Backends.Get(t)
	if err != nil {
		return nil, err
	}
	b, err := uc.registry.New(t, conn)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	result := backend.Ping(ctx, b)
	slog.Info("Connection tested",
		"backend", t.String(),
		"success", result.Success,
		"latency_ms", result.LatencyMs,
		"version", result.DatabaseVersion)
	return result, nil
}
