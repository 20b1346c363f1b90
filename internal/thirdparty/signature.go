package thirdparty

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 签名相关请求头
const (
	HeaderAPIKey    = "X-Api-Key"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
)

// Signature 一次请求的签名材料
type Signature struct {
	Timestamp int64
	Nonce     string
	Value     string // hex(HMAC-SHA256(secret, canonical))
}

// canonical METHOD\npath\ntimestamp\nnonce\nsha256hex(body)
func canonical(method, path string, ts int64, nonce string, body []byte) string {
	sum := sha256.Sum256(body)
	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		strconv.FormatInt(ts, 10),
		nonce,
		hex.EncodeToString(sum[:]),
	}, "\n")
}

func mac(secret, msg string) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}

// Sign 以当前时间和随机 nonce 签名
func Sign(secret, method, path string, body []byte, now time.Time) Signature {
	s := Signature{Timestamp: now.Unix(), Nonce: uuid.NewString()}
	s.Value = mac(secret, canonical(method, path, s.Timestamp, s.Nonce, body))
	return s
}

// Apply 写入签名请求头
func (s Signature) Apply(h http.Header) {
	h.Set(HeaderSignature, s.Value)
	h.Set(HeaderTimestamp, strconv.FormatInt(s.Timestamp, 10))
	h.Set(HeaderNonce, s.Nonce)
}

// Verify 接收端校验签名（常量时间比较）
func Verify(secret string, r *http.Request, body []byte) bool {
	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return false
	}
	want := mac(secret, canonical(r.Method, r.URL.Path, ts, r.Header.Get(HeaderNonce), body))
	return hmac.Equal([]byte(want), []byte(r.Header.Get(HeaderSignature)))
}
