package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores snapshots in a single table with JSONB payloads. The
// payload column holds the full record; id, kind, name and created_at are
// lifted into columns for listing and lookup.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a repository backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS feed_snapshots (
	id         UUID PRIMARY KEY,
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS feed_snapshots_kind_created_at
	ON feed_snapshots (kind, created_at DESC);
`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshot table: %w", err)
	}
	return nil
}

func (p *Postgres) save(ctx context.Context, kind Kind, meta *Meta, rec any) error {
	stamp(meta)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO feed_snapshots (id, kind, name, created_at, payload) VALUES ($1, $2, $3, $4, $5)`,
		meta.ID, string(kind), meta.Name, meta.CreatedAt, payload,
	)
	if err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}
	return nil
}

func (p *Postgres) get(ctx context.Context, kind Kind, id string, rec any) error {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM feed_snapshots WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	if err := json.Unmarshal(payload, rec); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", kind, err)
	}
	return nil
}

func (p *Postgres) list(ctx context.Context, kind Kind, decode func(payload []byte) error) error {
	rows, err := p.pool.Query(ctx,
		`SELECT payload FROM feed_snapshots WHERE kind = $1 ORDER BY created_at DESC, id`,
		string(kind),
	)
	if err != nil {
		return fmt.Errorf("list %s snapshots: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan %s snapshot: %w", kind, err)
		}
		if err := decode(payload); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", kind, err)
		}
	}
	return rows.Err()
}

func (p *Postgres) SaveUpload(ctx context.Context, rec *UploadRecord) error {
	return p.save(ctx, KindUpload, &rec.Meta, rec)
}

func (p *Postgres) ListUploads(ctx context.Context) ([]UploadRecord, error) {
	var out []UploadRecord
	err := p.list(ctx, KindUpload, func(payload []byte) error {
		var rec UploadRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (p *Postgres) GetUpload(ctx context.Context, id string) (*UploadRecord, error) {
	var rec UploadRecord
	if err := p.get(ctx, KindUpload, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *Postgres) SaveMapping(ctx context.Context, rec *MappingRecord) error {
	return p.save(ctx, KindMapping, &rec.Meta, rec)
}

func (p *Postgres) ListMappings(ctx context.Context) ([]MappingRecord, error) {
	var out []MappingRecord
	err := p.list(ctx, KindMapping, func(payload []byte) error {
		var rec MappingRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (p *Postgres) GetMapping(ctx context.Context, id string) (*MappingRecord, error) {
	var rec MappingRecord
	if err := p.get(ctx, KindMapping, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *Postgres) SaveSchema(ctx context.Context, rec *SchemaRecord) error {
	return p.save(ctx, KindSchema, &rec.Meta, rec)
}

func (p *Postgres) ListSchemas(ctx context.Context) ([]SchemaRecord, error) {
	var out []SchemaRecord
	err := p.list(ctx, KindSchema, func(payload []byte) error {
		var rec SchemaRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (p *Postgres) GetSchema(ctx context.Context, id string) (*SchemaRecord, error) {
	var rec SchemaRecord
	if err := p.get(ctx, KindSchema, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *Postgres) SaveExport(ctx context.Context, rec *ExportRecord) error {
	return p.save(ctx, KindExport, &rec.Meta, rec)
}

func (p *Postgres) ListExports(ctx context.Context) ([]ExportRecord, error) {
	var out []ExportRecord
	err := p.list(ctx, KindExport, func(payload []byte) error {
		var rec ExportRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM feed_snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
