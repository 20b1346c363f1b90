package thirdparty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Pusher 向外部 webhook 推送带签名的 JSON 事件
type Pusher struct {
	Client  *http.Client
	APIKey  string
	Secret  string
	Retries int
	Backoff []time.Duration
}

func NewPusher(client *http.Client, apiKey, secret string) *Pusher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Pusher{
		Client:  client,
		APIKey:  apiKey,
		Secret:  secret,
		Retries: 3,
		Backoff: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 500 * time.Millisecond},
	}
}

// retryable 网络错误与 5xx 重试
func retryable(code int, err error) bool {
	return err != nil || code >= http.StatusInternalServerError
}

func (p *Pusher) backoff(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	return p.Backoff[min(attempt, len(p.Backoff)-1)]
}

// attempt 发送一次；每次重建请求体
func (p *Pusher) attempt(ctx context.Context, endpoint string, body []byte, sig Signature) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, p.APIKey)
	sig.Apply(req.Header)

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	rb, err := io.ReadAll(resp.Body)
	return resp.StatusCode, rb, err
}

// SendJSON 签名并推送 payload；返回最后一次响应的状态码与内容。
// 非 2xx 的 4xx 直接返回且 err 为 nil，由调用方判断。
func (p *Pusher) SendJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	if p == nil || p.Client == nil {
		return 0, nil, errors.New("nil pusher")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}
	sig := Sign(p.Secret, http.MethodPost, u.Path, body, time.Now())

	var (
		code     int
		respBody []byte
	)
	for i := 0; ; i++ {
		code, respBody, err = p.attempt(ctx, endpoint, body, sig)
		if !retryable(code, err) || i >= p.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(p.backoff(i)):
		}
	}
	if err != nil {
		return 0, nil, err
	}
	if code >= http.StatusInternalServerError {
		return code, respBody, fmt.Errorf("http %d", code)
	}
	return code, respBody, nil
}
