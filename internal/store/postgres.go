package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vendzone/internal/model"
)

// Postgres keeps each entity as JSONB documents in its own table:
//
//	<table>(seq bigserial, id text primary key, doc jsonb not null)
//
// seq preserves insertion order for List and Filter.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

// MigrateDir applies every *.sql file in dir in lexical order. Migrations are
// written to be idempotent.
func (p *Postgres) MigrateDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		if _, err := p.db.Exec(string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

func pgList[T any](ctx context.Context, db *sql.DB, ent entity[T], filter map[string]any) ([]T, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(filter) == 0 {
		rows, err = db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY seq`, ent.table))
	} else {
		f, ferr := normalize(filter)
		if ferr != nil {
			return nil, ferr
		}
		b, _ := json.Marshal(f)
		rows, err = db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1::jsonb ORDER BY seq`, ent.table), string(b))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%s: %w", ent.table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func pgCreate[T any](ctx context.Context, db *sql.DB, ent entity[T], rec T) (T, error) {
	id := ent.id(&rec)
	if *id == "" {
		*id = uuid.New().String()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, ent.table), *id, string(b))
	return rec, err
}

func pgUpdate[T any](ctx context.Context, db *sql.DB, ent entity[T], id string, fields map[string]any) (T, error) {
	var rec T
	patch, err := patchOf(fields)
	if err != nil {
		return rec, err
	}
	b, _ := json.Marshal(patch)
	var raw []byte
	err = db.QueryRowContext(ctx, fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb WHERE id=$1 RETURNING doc`, ent.table), id, string(b)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, err
	}
	err = json.Unmarshal(raw, &rec)
	return rec, err
}

func pgSave[T any](ctx context.Context, db *sql.DB, ent entity[T], rec T) error {
	id := *ent.id(&rec)
	if id == "" {
		return fmt.Errorf("%s: save needs an id", ent.table)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)
        ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, ent.table), id, string(b))
	return err
}

func (p *Postgres) ListZones(ctx context.Context) ([]model.Zone, error) {
	return pgList(ctx, p.db, zoneEntity, nil)
}

func (p *Postgres) FilterZones(ctx context.Context, fields map[string]any) ([]model.Zone, error) {
	return pgList(ctx, p.db, zoneEntity, fields)
}

func (p *Postgres) CreateZone(ctx context.Context, z model.Zone) (model.Zone, error) {
	return pgCreate(ctx, p.db, zoneEntity, z)
}

func (p *Postgres) UpdateZone(ctx context.Context, id string, fields map[string]any) (model.Zone, error) {
	return pgUpdate(ctx, p.db, zoneEntity, id, fields)
}

func (p *Postgres) SaveZone(ctx context.Context, z model.Zone) error {
	return pgSave(ctx, p.db, zoneEntity, z)
}

func (p *Postgres) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	return pgList(ctx, p.db, vendorEntity, nil)
}

func (p *Postgres) FilterVendors(ctx context.Context, fields map[string]any) ([]model.Vendor, error) {
	return pgList(ctx, p.db, vendorEntity, fields)
}

func (p *Postgres) CreateVendor(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	return pgCreate(ctx, p.db, vendorEntity, v)
}

func (p *Postgres) UpdateVendor(ctx context.Context, id string, fields map[string]any) (model.Vendor, error) {
	return pgUpdate(ctx, p.db, vendorEntity, id, fields)
}

func (p *Postgres) SaveVendor(ctx context.Context, v model.Vendor) error {
	return pgSave(ctx, p.db, vendorEntity, v)
}

func (p *Postgres) ListReports(ctx context.Context) ([]model.HygieneReport, error) {
	return pgList(ctx, p.db, reportEntity, nil)
}

func (p *Postgres) FilterReports(ctx context.Context, fields map[string]any) ([]model.HygieneReport, error) {
	return pgList(ctx, p.db, reportEntity, fields)
}

func (p *Postgres) CreateReport(ctx context.Context, r model.HygieneReport) (model.HygieneReport, error) {
	return pgCreate(ctx, p.db, reportEntity, r)
}

func (p *Postgres) UpdateReport(ctx context.Context, id string, fields map[string]any) (model.HygieneReport, error) {
	return pgUpdate(ctx, p.db, reportEntity, id, fields)
}

func (p *Postgres) SaveReport(ctx context.Context, r model.HygieneReport) error {
	return pgSave(ctx, p.db, reportEntity, r)
}
