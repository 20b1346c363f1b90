package sink

import (
	"context"
	"fmt"
	"net/http"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
	"github.com/taoyao-code/btwattch2-collector/internal/thirdparty"
)

// Webhook 以签名 JSON 事件推送读数
type Webhook struct {
	pusher *thirdparty.Pusher
	url    string
}

// NewWebhook 创建 webhook 下游
func NewWebhook(cfg cfgpkg.WebhookConfig) *Webhook {
	p := thirdparty.NewPusher(&http.Client{Timeout: cfg.Timeout}, cfg.APIKey, cfg.Secret)
	if cfg.Retries >= 0 {
		p.Retries = cfg.Retries
	}
	return &Webhook{pusher: p, url: cfg.URL}
}

func (w *Webhook) Write(ctx context.Context, s coremodel.Sample) error {
	code, _, err := w.pusher.SendJSON(ctx, w.url, thirdparty.NewSampleEvent(s))
	if err != nil {
		return fmt.Errorf("webhook push: %w", err)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook push: http %d", code)
	}
	return nil
}
