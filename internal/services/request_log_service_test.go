package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat-relay/internal/models"
	"chat-relay/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testConfigManager struct {
	retention types.RetentionConfig
}

func (m *testConfigManager) GetServerConfig() types.ServerConfig       { return types.ServerConfig{} }
func (m *testConfigManager) GetUpstreamConfig() types.UpstreamConfig   { return types.UpstreamConfig{} }
func (m *testConfigManager) GetLogConfig() types.LogConfig             { return types.LogConfig{} }
func (m *testConfigManager) GetCORSConfig() types.CORSConfig           { return types.CORSConfig{} }
func (m *testConfigManager) GetDatabaseConfig() types.DatabaseConfig   { return types.DatabaseConfig{} }
func (m *testConfigManager) GetRetentionConfig() types.RetentionConfig { return m.retention }
func (m *testConfigManager) IsAPIKeyConfigured() bool                  { return true }
func (m *testConfigManager) Validate() error                           { return nil }
func (m *testConfigManager) DisplayServerConfig()                      {}

func newTestService(t *testing.T, retention types.RetentionConfig) *RequestLogService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RequestLog{}))

	return NewRequestLogService(db, &testConfigManager{retention: retention})
}

func TestRequestLogService_RecordAndFlush(t *testing.T) {
	t.Parallel()

	service := newTestService(t, types.RetentionConfig{MaxPendingEntries: 100})

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		service.Record(&models.RequestLog{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Model:      fmt.Sprintf("model-%d", i),
			StatusCode: 200,
			IsSuccess:  true,
		})
	}

	// Nothing is persisted until a flush happens.
	logs, err := service.List(10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	service.flush()

	logs, err = service.List(10)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Newest first.
	assert.Equal(t, "model-2", logs[0].Model)
	assert.Equal(t, "model-0", logs[2].Model)
	for _, entry := range logs {
		assert.NotEmpty(t, entry.ID)
	}
}

func TestRequestLogService_ListLimits(t *testing.T) {
	t.Parallel()

	service := newTestService(t, types.RetentionConfig{MaxPendingEntries: 100})

	for i := 0; i < 5; i++ {
		service.Record(&models.RequestLog{Model: "m", StatusCode: 200})
	}
	service.flush()

	logs, err := service.List(2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// Out-of-range limits fall back to the default.
	logs, err = service.List(-1)
	require.NoError(t, err)
	assert.Len(t, logs, 5)

	logs, err = service.List(10000)
	require.NoError(t, err)
	assert.Len(t, logs, 5)
}

func TestRequestLogService_DropsOldestWhenFull(t *testing.T) {
	t.Parallel()

	service := newTestService(t, types.RetentionConfig{MaxPendingEntries: 3})

	for i := 0; i < 5; i++ {
		service.Record(&models.RequestLog{Model: fmt.Sprintf("model-%d", i)})
	}
	service.flush()

	logs, err := service.List(10)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	names := make([]string, 0, len(logs))
	for _, entry := range logs {
		names = append(names, entry.Model)
	}
	assert.ElementsMatch(t, []string{"model-2", "model-3", "model-4"}, names)
}

func TestRequestLogService_StopFlushesPending(t *testing.T) {
	t.Parallel()

	service := newTestService(t, types.RetentionConfig{
		FlushInterval:     time.Hour,
		MaxPendingEntries: 100,
	})
	service.Start()

	service.Record(&models.RequestLog{Model: "pending"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	service.Stop(ctx)

	logs, err := service.List(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "pending", logs[0].Model)
}

func TestRequestLogService_FlushEmptyIsNoop(t *testing.T) {
	t.Parallel()

	service := newTestService(t, types.RetentionConfig{MaxPendingEntries: 100})
	service.flush()

	logs, err := service.List(10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
