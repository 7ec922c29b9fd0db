package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/haclabs/haccare/internal/common"
	"github.com/haclabs/haccare/internal/dbx"
	"github.com/haclabs/haccare/internal/models"
	"github.com/haclabs/haccare/internal/recordid"
	"github.com/haclabs/haccare/internal/records/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps record documents in the records table. Bodies are the
// same JSON a FileStore writes.
type SQLiteStore struct {
	db *sql.DB
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", common.ErrStorageIO, err)
	}
	// A single connection serialises writers instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := gooseUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", common.ErrStorageIO, err)
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*models.PatientRecord, error) {
	id, err := recordid.Normalize(id)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = s.db.QueryRowContext(ctx, `SELECT body FROM records WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.PatientRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load record %s: %w", common.ErrStorageIO, id, err)
	}

	rec := &models.PatientRecord{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, fmt.Errorf("%w: decode record %s: %w", common.ErrStorageIO, id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, rec *models.PatientRecord) error {
	id, err := recordid.Normalize(id)
	if err != nil {
		return err
	}
	return upsert(ctx, s.db, id, rec)
}

func upsert(ctx context.Context, db dbx.DBTX, id string, rec *models.PatientRecord) error {
	body, err := encode(rec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO records (id, body) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, id, body)
	if err != nil {
		return fmt.Errorf("%w: save record %s: %w", common.ErrStorageIO, id, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	id, err := recordid.Normalize(id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete record %s: %w", common.ErrStorageIO, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete record %s: %w", common.ErrStorageIO, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: delete record %s: %w", common.ErrStorageIO, id, common.ErrorNotFound)
	}
	return nil
}

// All streams ids from the table in rowid order.
func (s *SQLiteStore) All(ctx context.Context) iter.Seq2[string, error] {
	return allIDs(ctx, s.db)
}

func allIDs(ctx context.Context, db dbx.DBTX) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := db.QueryContext(ctx, `SELECT id FROM records ORDER BY rowid`)
		if err != nil {
			yield("", fmt.Errorf("%w: list records: %w", common.ErrStorageIO, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				yield("", fmt.Errorf("%w: scan record id: %w", common.ErrStorageIO, err))
				return
			}
			if !yield(id, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", fmt.Errorf("%w: list records: %w", common.ErrStorageIO, err))
		}
	}
}

func (s *SQLiteStore) NextID(ctx context.Context) (string, error) {
	return nextID(ctx, s)
}

// Create allocates the next id and inserts the built record in one
// transaction.
func (s *SQLiteStore) Create(ctx context.Context, build func(id string) (*models.PatientRecord, error)) (string, error) {
	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var nums []int
		for existing, err := range allIDs(ctx, tx) {
			if err != nil {
				return err
			}
			if n, ok := recordid.Numeric(existing); ok {
				nums = append(nums, n)
			}
		}
		id = recordid.Next(nums)

		rec, err := build(id)
		if err != nil {
			return err
		}
		return upsert(ctx, tx, id, rec)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
