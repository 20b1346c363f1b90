package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
	"github.com/taoyao-code/btwattch2-collector/internal/sink"
	pgstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/pg"
	redisstorage "github.com/taoyao-code/btwattch2-collector/internal/storage/redis"
	"go.uber.org/zap"
)

// Sinks 组装后的读数下游
type Sinks struct {
	Fanout *sink.Fanout
	Influx *sink.Influx              // 未启用时为 nil
	Latest *redisstorage.LatestStore // 未启用时为 nil
	Repo   *pgstorage.Repository     // 未启用时为 nil
}

// BuildSinks 按配置组装下游：Prometheus gauge 始终启用；没有任何持久化下游时回退为日志输出
func BuildSinks(cfg *cfgpkg.Config, dbpool *pgxpool.Pool, redisClient *redisstorage.Client, appm *metrics.AppMetrics, log *zap.Logger) *Sinks {
	s := &Sinks{}
	named := []sink.Named{{Name: "gauges", Writer: sink.Gauges{Metrics: appm}}}

	if cfg.Influx.Enabled {
		s.Influx = sink.NewInflux(cfg.Influx)
		named = append(named, sink.Named{Name: "influx", Writer: s.Influx})
		log.Info("influx sink enabled",
			zap.String("url", cfg.Influx.URL),
			zap.String("bucket", cfg.Influx.Bucket))
	}
	if dbpool != nil {
		s.Repo = &pgstorage.Repository{Pool: dbpool}
		named = append(named, sink.Named{Name: "postgres", Writer: sink.Postgres{Repo: s.Repo}})
	}
	if redisClient != nil {
		s.Latest = redisstorage.NewLatestStore(redisClient, cfg.Redis.LatestTTL)
		named = append(named, sink.Named{Name: "redis", Writer: sink.Redis{Store: s.Latest}})
	}
	if cfg.Webhook.Enabled {
		named = append(named, sink.Named{Name: "webhook", Writer: sink.NewWebhook(cfg.Webhook)})
		log.Info("webhook sink enabled", zap.String("url", cfg.Webhook.URL))
	}
	if len(named) == 1 {
		named = append(named, sink.Named{Name: "log", Writer: sink.Log{Logger: log}})
		log.Warn("no persistent sink enabled, samples are logged only")
	}

	s.Fanout = sink.NewFanout(log, appm, named...)
	return s
}

// Close 刷新并释放下游资源
func (s *Sinks) Close() {
	if s.Influx != nil {
		s.Influx.Close()
	}
}
