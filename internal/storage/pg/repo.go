package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/btwattch2-collector/internal/coremodel"
)

// Repository 读数与命令日志持久化
type Repository struct {
	Pool *pgxpool.Pool
}

// InsertSample 写入一条读数
func (r *Repository) InsertSample(ctx context.Context, s coremodel.Sample) error {
	const q = `INSERT INTO meter_samples (address, voltage, ampere, wattage, captured_at)
               VALUES ($1,$2,$3,$4,$5)`
	_, err := r.Pool.Exec(ctx, q, s.Address, s.Voltage, s.Current, s.Wattage, s.Time)
	return err
}

// ListSamples 按时间倒序返回某电表最近的读数
func (r *Repository) ListSamples(ctx context.Context, addr string, since time.Time, limit int) ([]coremodel.Sample, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	const q = `SELECT address, voltage, ampere, wattage, captured_at
               FROM meter_samples
               WHERE address = $1 AND captured_at >= $2
               ORDER BY captured_at DESC
               LIMIT $3`
	rows, err := r.Pool.Query(ctx, q, addr, since, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (coremodel.Sample, error) {
		var s coremodel.Sample
		err := row.Scan(&s.Address, &s.Voltage, &s.Current, &s.Wattage, &s.Time)
		return s, err
	})
}

// InsertCommandLog 记录一次继电器命令
func (r *Repository) InsertCommandLog(ctx context.Context, addr, action string, frame []byte, success bool, requestID string) error {
	const q = `INSERT INTO meter_commands (address, action, frame, success, request_id, created_at)
               VALUES ($1,$2,$3,$4,$5,NOW())`
	_, err := r.Pool.Exec(ctx, q, addr, action, frame, success, requestID)
	return err
}
