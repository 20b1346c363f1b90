package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/metrics"
)

type recordWriter struct {
	mu   sync.Mutex
	got  []coremodel.Sample
	fail error
}

func (w *recordWriter) Write(_ context.Context, s coremodel.Sample) error {
	if w.fail != nil {
		return w.fail
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.got = append(w.got, s)
	return nil
}

func sample() coremodel.Sample {
	return coremodel.Sample{
		Address: "AA:BB:CC:DD:EE:01",
		Voltage: 100.5,
		Current: 0.25,
		Wattage: 25.125,
		Time:    time.Unix(1700000000, 0).UTC(),
	}
}

func TestFanout_IsolatesFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAppMetrics(reg)
	ok1 := &recordWriter{}
	bad := &recordWriter{fail: errors.New("down")}
	ok2 := &recordWriter{}

	f := NewFanout(zap.NewNop(), m,
		Named{Name: "a", Writer: ok1},
		Named{Name: "influx", Writer: bad},
		Named{Name: "b", Writer: ok2},
	)
	err := f.Write(context.Background(), sample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx: down")
	assert.Len(t, ok1.got, 1)
	assert.Len(t, ok2.got, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkErrors.WithLabelValues("influx")))
	assert.Equal(t, 3, f.Len())
}

func TestFanout_AllOK(t *testing.T) {
	f := NewFanout(nil, nil, Named{Name: "a", Writer: &recordWriter{}})
	assert.NoError(t, f.Write(context.Background(), sample()))
}

func TestInflux_WritesLineProtocol(t *testing.T) {
	var (
		mu    sync.Mutex
		body  string
		query string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(bytes.TrimSpace(b))
		query = r.URL.RawQuery
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	in := NewInflux(cfgpkg.InfluxConfig{URL: srv.URL, Token: "t", Org: "home", Bucket: "power"})
	defer in.Close()

	require.NoError(t, in.Write(context.Background(), sample()))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasPrefix(body, `btwattch2,address=AA:BB:CC:DD:EE:01 `), body)
	assert.Contains(t, body, "voltage=100.5")
	assert.Contains(t, body, "ampere=0.25")
	assert.Contains(t, body, "wattage=25.125")
	assert.True(t, strings.HasSuffix(body, " 1700000000000000000"), body)
	assert.Contains(t, query, "bucket=power")
	assert.Contains(t, query, "org=home")
}

func TestInflux_WriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"unauthorized access"}`))
	}))
	defer srv.Close()

	in := NewInflux(cfgpkg.InfluxConfig{URL: srv.URL, Org: "home", Bucket: "power"})
	defer in.Close()
	assert.Error(t, in.Write(context.Background(), sample()))
}

func TestGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAppMetrics(reg)
	require.NoError(t, Gauges{Metrics: m}.Write(context.Background(), sample()))
	assert.Equal(t, 100.5, testutil.ToFloat64(m.Voltage.WithLabelValues("AA:BB:CC:DD:EE:01")))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.Current.WithLabelValues("AA:BB:CC:DD:EE:01")))
	assert.Equal(t, 25.125, testutil.ToFloat64(m.Power.WithLabelValues("AA:BB:CC:DD:EE:01")))
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	require.NoError(t, Log{Logger: zap.New(core)}.Write(context.Background(), sample()))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "sample", entry.Message)
	assert.Equal(t, "AA:BB:CC:DD:EE:01", entry.ContextMap()["addr"])
}

func TestWebhook(t *testing.T) {
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		if r.Header.Get("X-Signature") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	wh := NewWebhook(cfgpkg.WebhookConfig{URL: ts.URL + "/hook", Secret: "s", Timeout: time.Second})
	s := coremodel.Sample{Address: "AA:BB:CC:DD:EE:FF", Voltage: 100, Time: time.UnixMilli(1)}
	require.NoError(t, wh.Write(context.Background(), s))
	assert.Contains(t, string(body), `"event_type":"meter.sample"`)
	assert.Contains(t, string(body), `"address":"AA:BB:CC:DD:EE:FF"`)
}

func TestWebhook_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	wh := NewWebhook(cfgpkg.WebhookConfig{URL: ts.URL, Timeout: time.Second})
	err := wh.Write(context.Background(), coremodel.Sample{Address: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
