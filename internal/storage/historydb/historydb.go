// Package historydb persists the per-instruction history (kind, signer,
// result code, effect log) in a relational database. SQLite is the default;
// postgres is available for shared deployments.
package historydb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/custodia/govaultd/internal/core/tx"
)

// Store persists applied instructions.
type Store interface {
	tx.Recorder

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]tx.HistoryRecord, error)

	Close() error
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS instruction_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	kind        TEXT    NOT NULL,
	signer      TEXT    NOT NULL,
	code        INTEGER NOT NULL,
	effects     TEXT    NOT NULL,
	applied_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_signer ON instruction_history(signer);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS instruction_history (
	id          BIGSERIAL PRIMARY KEY,
	kind        TEXT      NOT NULL,
	signer      TEXT      NOT NULL,
	code        INTEGER   NOT NULL,
	effects     TEXT      NOT NULL,
	applied_at  TEXT      NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_signer ON instruction_history(signer);
`

// SQL is a Store over database/sql.
type SQL struct {
	db          *sql.DB
	placeholder func(i int) string
}

// OpenSQLite opens (or creates) a SQLite-backed history store. Use
// ":memory:" for an ephemeral store.
func OpenSQLite(dsn string) (*SQL, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQL{
		db:          db,
		placeholder: func(i int) string { return "?" },
	}, nil
}

// OpenPostgres opens a postgres-backed history store.
func OpenPostgres(dsn string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres history db: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQL{
		db:          db,
		placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	}, nil
}

// Append stores one record.
func (s *SQL) Append(rec tx.HistoryRecord) error {
	effects, err := json.Marshal(rec.Effects)
	if err != nil {
		return fmt.Errorf("marshal effects: %w", err)
	}
	query := fmt.Sprintf(
		"INSERT INTO instruction_history (kind, signer, code, effects, applied_at) VALUES (%s, %s, %s, %s, %s)",
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5),
	)
	_, err = s.db.Exec(query, rec.Kind, rec.Signer, int(rec.Code), string(effects), rec.AppliedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQL) Recent(limit int) ([]tx.HistoryRecord, error) {
	query := fmt.Sprintf(
		"SELECT kind, signer, code, effects, applied_at FROM instruction_history ORDER BY id DESC LIMIT %s",
		s.placeholder(1),
	)
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []tx.HistoryRecord
	for rows.Next() {
		var (
			rec       tx.HistoryRecord
			code      int
			effects   string
			appliedAt string
		)
		if err := rows.Scan(&rec.Kind, &rec.Signer, &code, &effects, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.Code = tx.Result(code)
		if err := json.Unmarshal([]byte(effects), &rec.Effects); err != nil {
			return nil, fmt.Errorf("unmarshal effects: %w", err)
		}
		if rec.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, fmt.Errorf("parse applied_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQL) Close() error {
	return s.db.Close()
}
