package memory

import (
	"context"
	"errors"
	"fmt"

	"modtrans/internal/textutil"
	"modtrans/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS translation_memory (
	hash       TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	translated TEXT NOT NULL,
	file       TEXT NOT NULL DEFAULT '',
	record_key TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `INSERT INTO translation_memory (hash, source, translated, file, record_key)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (hash) DO UPDATE SET
	translated = EXCLUDED.translated,
	file = EXCLUDED.file,
	record_key = EXCLUDED.record_key,
	updated_at = now()`

// Postgres is a Store backed by PostgreSQL with an in-process read cache.
type Postgres struct {
	pool      *pgxpool.Pool
	cache     *Memory
	batchSize int
	log       zerolog.Logger
}

// Connect opens the pool, creates the table if needed and preloads it.
func Connect(ctx context.Context, url string, batchSize int, logger zerolog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	logger.Info().Msg("Connected to PostgreSQL")

	p := &Postgres{pool: pool, cache: New(), batchSize: batchSize, log: logger}
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := p.Preload(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// EnsureSchema creates the translation_memory table.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create translation_memory: %w", err)
	}
	return nil
}

// Preload loads every remembered translation into memory.
func (p *Postgres) Preload(ctx context.Context) error {
	rows, err := p.pool.Query(ctx, `SELECT hash, translated FROM translation_memory`)
	if err != nil {
		return fmt.Errorf("preload memory: %w", err)
	}
	defer rows.Close()

	p.cache.mu.Lock()
	defer p.cache.mu.Unlock()
	count := 0
	for rows.Next() {
		var hash, translated string
		if err := rows.Scan(&hash, &translated); err != nil {
			return fmt.Errorf("preload memory: %w", err)
		}
		p.cache.memory[hash] = translated
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload memory: %w", err)
	}

	p.log.Info().Int("count", count).Msg("Preloaded translation memory")
	return nil
}

// Lookup checks the in-process cache first, then the table.
func (p *Postgres) Lookup(ctx context.Context, source string) (string, bool) {
	if v, ok := p.cache.Lookup(ctx, source); ok {
		return v, true
	}

	hash := textutil.Hash(source)
	var translated string
	err := p.pool.QueryRow(ctx, `SELECT translated FROM translation_memory WHERE hash = $1`, hash).Scan(&translated)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			p.log.Warn().Err(err).Str("text", textutil.Truncate(source, 30)).Msg("Translation memory lookup failed")
		}
		return "", false
	}

	p.cache.mu.Lock()
	p.cache.memory[hash] = translated
	p.cache.mu.Unlock()
	return translated, true
}

// Remember upserts entries in batches.
func (p *Postgres) Remember(ctx context.Context, entries []Entry) error {
	if err := p.cache.Remember(ctx, entries); err != nil {
		return err
	}

	for _, chunk := range worker.Batch(entries, p.batchSize) {
		b := &pgx.Batch{}
		for _, e := range chunk {
			b.Queue(upsertSQL, textutil.Hash(e.Source), e.Source, e.Translated, e.File, e.Key)
		}
		if err := p.pool.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("remember translations: %w", err)
		}
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
