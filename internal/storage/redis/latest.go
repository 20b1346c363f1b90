package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
)

const latestKeyPrefix = "btwattch2:latest:"

// LatestStore 每个电表最近一次读数的缓存
type LatestStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewLatestStore ttl<=0 表示不过期
func NewLatestStore(rdb redis.Cmdable, ttl time.Duration) *LatestStore {
	return &LatestStore{rdb: rdb, ttl: ttl}
}

func latestKey(addr string) string {
	return latestKeyPrefix + addr
}

// Set 覆盖写入最近读数
func (s *LatestStore) Set(ctx context.Context, sample coremodel.Sample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	return s.rdb.Set(ctx, latestKey(sample.Address), data, s.ttl).Err()
}

// Get 读取最近读数，不存在时 ok=false
func (s *LatestStore) Get(ctx context.Context, addr string) (coremodel.Sample, bool, error) {
	data, err := s.rdb.Get(ctx, latestKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return coremodel.Sample{}, false, nil
	}
	if err != nil {
		return coremodel.Sample{}, false, err
	}
	var sample coremodel.Sample
	if err := json.Unmarshal(data, &sample); err != nil {
		return coremodel.Sample{}, false, fmt.Errorf("unmarshal sample: %w", err)
	}
	return sample, true, nil
}
