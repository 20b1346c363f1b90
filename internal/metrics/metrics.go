package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	CommandWrites   *prometheus.CounterVec // labels: result=ok|error
	PowerCommands   *prometheus.CounterVec // labels: action=on|off, result=ok|error
	Notifications   prometheus.Counter     // 收到的通知分片
	NotifyDropped   prometheus.Counter     // 通知缓冲已满被丢弃的分片
	Frames          prometheus.Counter     // 拼装完成的遥测帧
	Samples         prometheus.Counter     // 成功投递到下游的读数
	SinkErrors      *prometheus.CounterVec // labels: sink
	MetersConnected prometheus.Gauge       // 当前采集中的电表数
	Voltage         *prometheus.GaugeVec   // labels: addr
	Current         *prometheus.GaugeVec   // labels: addr
	Power           *prometheus.GaugeVec   // labels: addr
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		CommandWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "btwattch2_command_writes_total",
			Help: "Command frames written to meters.",
		}, []string{"result"}),
		PowerCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "btwattch2_power_commands_total",
			Help: "Relay on/off commands issued over HTTP.",
		}, []string{"action", "result"}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btwattch2_notifications_total",
			Help: "Telemetry notification chunks received.",
		}),
		NotifyDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btwattch2_notifications_dropped_total",
			Help: "Notification chunks dropped because the per-meter buffer was full.",
		}),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btwattch2_frames_total",
			Help: "Complete telemetry frames reassembled.",
		}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "btwattch2_samples_total",
			Help: "Samples forwarded to the sink.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "btwattch2_sink_errors_total",
			Help: "Sample sink write failures.",
		}, []string{"sink"}),
		MetersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "btwattch2_meters_connected",
			Help: "Meters with a running aggregation loop.",
		}),
		Voltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btwattch2_voltage_volts",
			Help: "Last decoded voltage per meter.",
		}, []string{"addr"}),
		Current: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btwattch2_current_amperes",
			Help: "Last decoded current per meter.",
		}, []string{"addr"}),
		Power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "btwattch2_power_watts",
			Help: "Last decoded wattage per meter.",
		}, []string{"addr"}),
	}
	reg.MustRegister(m.CommandWrites, m.PowerCommands, m.Notifications, m.NotifyDropped, m.Frames, m.Samples,
		m.SinkErrors, m.MetersConnected, m.Voltage, m.Current, m.Power)
	return m
}
