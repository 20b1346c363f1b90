package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/protocol/btwattch2"
)

// Influx 每个读数写一个点：measurement=btwattch2, tags={address}, fields={voltage, ampere, wattage}
type Influx struct {
	client      influxdb2.Client
	writer      api.WriteAPIBlocking
	measurement string
}

// NewInflux 创建 InfluxDB v2 下游
func NewInflux(cfg cfgpkg.InfluxConfig) *Influx {
	m := cfg.Measurement
	if m == "" {
		m = btwattch2.Measurement
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Influx{
		client:      client,
		writer:      client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: m,
	}
}

// Write 同步写入一个点
func (i *Influx) Write(ctx context.Context, s coremodel.Sample) error {
	p := influxdb2.NewPoint(i.measurement, s.Tags(), s.Fields(), s.Time)
	if err := i.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// Ping 健康检查
func (i *Influx) Ping(ctx context.Context) error {
	ok, err := i.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influx ping: not ready")
	}
	return nil
}

// Close 释放客户端
func (i *Influx) Close() {
	i.client.Close()
}
