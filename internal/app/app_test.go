package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/health"
)

type counter struct{ active, total int }

func (c counter) Active() int { return c.active }
func (c counter) Total() int  { return c.total }

func TestBuildSinks_LogFallback(t *testing.T) {
	_, appm := NewMetrics()
	cfg := &cfgpkg.Config{}

	s := BuildSinks(cfg, nil, nil, appm, zap.NewNop())
	defer s.Close()
	assert.Equal(t, 2, s.Fanout.Len())
	assert.Nil(t, s.Influx)
	assert.Nil(t, s.Latest)
	assert.Nil(t, s.Repo)
}

func TestBuildSinks_Influx(t *testing.T) {
	_, appm := NewMetrics()
	cfg := &cfgpkg.Config{Influx: cfgpkg.InfluxConfig{
		Enabled: true, URL: "http://127.0.0.1:1", Org: "home", Bucket: "power",
	}}

	s := BuildSinks(cfg, nil, nil, appm, zap.NewNop())
	defer s.Close()
	require.NotNil(t, s.Influx)
	assert.Equal(t, 2, s.Fanout.Len())
}

func TestNewHealthAggregator_MetersOnly(t *testing.T) {
	agg := NewHealthAggregator(nil, nil, nil, counter{1, 2})
	results := agg.CheckAll(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, health.StatusDegraded, results["meters"].Status)
}

func TestConnectDBAndMigrate_Disabled(t *testing.T) {
	pool, err := ConnectDBAndMigrate(context.Background(), cfgpkg.DatabaseConfig{}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, pool)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	c, err := NewRedisClient(cfgpkg.RedisConfig{}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestCollectorConfig(t *testing.T) {
	got := CollectorConfig(cfgpkg.CollectorConfig{
		PollInterval: time.Second, WriteTimeout: 500 * time.Millisecond, SinkTimeout: 5 * time.Second,
	})
	assert.Equal(t, time.Second, got.PollInterval)
	assert.Equal(t, 500*time.Millisecond, got.WriteTimeout)
	assert.Equal(t, 5*time.Second, got.SinkTimeout)
}

func TestAsMeters_Empty(t *testing.T) {
	assert.Empty(t, AsMeters(nil))
}

func TestBuildSinks_Webhook(t *testing.T) {
	_, appm := NewMetrics()
	cfg := &cfgpkg.Config{Webhook: cfgpkg.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1/hook"}}

	s := BuildSinks(cfg, nil, nil, appm, zap.NewNop())
	assert.Equal(t, 2, s.Fanout.Len())
}

func TestMigrationSource(t *testing.T) {
	assert.Equal(t, "embedded", migrationSource(""))
	assert.Equal(t, "db/migrations", migrationSource("db/migrations"))
}
