package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/deal-bench/internal/domain/config"
	"github.com/whhaicheng/deal-bench/internal/domain/connection"
	"github.com/whhaicheng/deal-bench/internal/infra/backend"
	"github.com/whhaicheng/deal-bench/internal/infra/backend/dry"
)

func dryRegistry() *backend.Registry {
	reg := backend.NewRegistry()
	reg.Register(connection.DatabaseTypeDry, dry.Factory(dry.New()))
	return reg
}

func TestConnectionUseCase_Describe(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backends.MongoDB.Password = "secret"
	cfg.Backends.MongoDB.Username = "bench"
	cfg.Backends.ArangoDB.Endpoints = nil

	infos := NewConnectionUseCase(dryRegistry()).Describe(cfg)
	require.Len(t, infos, len(connection.DatabaseTypes))

	byType := make(map[connection.DatabaseType]BackendInfo)
	for _, info := range infos {
		byType[info.Type] = info
	}

	assert.True(t, byType[connection.DatabaseTypeDry].Registered)
	assert.Empty(t, byType[connection.DatabaseTypeDry].Connection)
	assert.False(t, byType[connection.DatabaseTypeMongoDB].Registered)
	assert.NotContains(t, byType[connection.DatabaseTypeMongoDB].Connection, "secret")
	assert.NoError(t, byType[connection.DatabaseTypeMongoDB].Err)
	assert.Error(t, byType[connection.DatabaseTypeArangoDB].Err)
}

func TestConnectionUseCase_TestConnection(t *testing.T) {
	uc := NewConnectionUseCase(dryRegistry())
	cfg := config.DefaultConfig()

	res, err := uc.TestConnection(context.Background(), cfg, connection.DatabaseTypeDry)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, dry.Version, res.DatabaseVersion)

	_, err = uc.TestConnection(context.Background(), cfg, connection.DatabaseTypeSurrealDB)
	assert.ErrorIs(t, err, connection.ErrUnknownBackend)
}
