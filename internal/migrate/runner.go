package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var embedded embed.FS

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
	appliedSQL = `SELECT version FROM schema_migrations`
	recordSQL  = `INSERT INTO schema_migrations(version) VALUES($1)`
)

// Embedded 返回随二进制发布的迁移脚本
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Runner 迁移执行器。
// 来源优先级：Dir（磁盘目录）> FS > 内置脚本。
type Runner struct {
	Dir string
	FS  fs.FS
}

// Step 一个向上迁移脚本
type Step struct {
	Version int64
	Path    string
}

func (r Runner) source() fs.FS {
	switch {
	case r.Dir != "":
		return os.DirFS(r.Dir)
	case r.FS != nil:
		return r.FS
	default:
		return Embedded()
	}
}

// EnsureTable 保证 schema_migrations 表存在
func EnsureTable(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// AppliedVersions 已应用版本集合
func AppliedVersions(ctx context.Context, db *pgxpool.Pool) (map[int64]bool, error) {
	rows, err := db.Query(ctx, appliedSQL)
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan applied versions: %w", err)
	}
	set := make(map[int64]bool, len(versions))
	for _, v := range versions {
		set[v] = true
	}
	return set, nil
}

// parseVersion 从 "0001_name_up.sql" 中取版本号；非向上脚本返回 false
func parseVersion(name string) (int64, bool) {
	if !strings.HasSuffix(name, "_up.sql") {
		return 0, false
	}
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func discoverUpMigrations(fsys fs.FS) ([]Step, error) {
	var steps []Step
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if v, ok := parseVersion(path.Base(p)); ok {
			steps = append(steps, Step{Version: v, Path: p})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan migrations: %w", err)
	}
	slices.SortFunc(steps, func(a, b Step) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	return steps, nil
}

// Pending 返回尚未应用的迁移（按版本升序）
func (r Runner) Pending(ctx context.Context, db *pgxpool.Pool) ([]Step, error) {
	if err := EnsureTable(ctx, db); err != nil {
		return nil, err
	}
	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}
	all, err := discoverUpMigrations(r.source())
	if err != nil {
		return nil, err
	}
	return pendingSteps(all, applied), nil
}

func pendingSteps(all []Step, applied map[int64]bool) []Step {
	out := all[:0:0]
	for _, s := range all {
		if !applied[s.Version] {
			out = append(out, s)
		}
	}
	return out
}

// Up 依次执行未应用的迁移，每个版本单独一个事务
func (r Runner) Up(ctx context.Context, db *pgxpool.Pool) error {
	steps, err := r.Pending(ctx, db)
	if err != nil {
		return err
	}
	fsys := r.source()
	for _, s := range steps {
		script, err := fs.ReadFile(fsys, s.Path)
		if err != nil {
			return fmt.Errorf("migration %d: %w", s.Version, err)
		}
		err = pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, recordSQL, s.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", s.Version, s.Path, err)
		}
	}
	return nil
}
