package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// BunStore persists values in a Bun-backed database.
type BunStore struct {
	db *bun.DB
}

type contentModel struct {
	bun.BaseModel `bun:"table:contents"`

	Key       string    `bun:"content_key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// OpenSQLite opens a sqlite database for a BunStore.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// NewBunStore constructs a Bun-backed store. Call Init before first use.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Init creates the contents table when it does not exist.
func (s *BunStore) Init(ctx context.Context) error {
	if s.db == nil {
		return errors.New("persist: bun store requires a database")
	}
	if _, err := s.db.NewCreateTable().Model((*contentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create contents table: %w", err)
	}
	return nil
}

// Get returns the stored value or ErrNotFound.
func (s *BunStore) Get(ctx context.Context, key string) (string, error) {
	if s.db == nil {
		return "", errors.New("persist: bun store requires a database")
	}
	var row contentModel
	if err := s.db.NewSelect().Model(&row).Where("content_key = ?", key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return row.Value, nil
}

// Set inserts or replaces the value stored under key.
func (s *BunStore) Set(ctx context.Context, key, value string) error {
	if s.db == nil {
		return errors.New("persist: bun store requires a database")
	}
	row := contentModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (content_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
