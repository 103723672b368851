package vectorstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteJournal is an append-only record log backed by SQLite
type SQLiteJournal struct {
	db       *sql.DB
	dbPath   string
	embedder string
	dims     int
	mu       sync.Mutex
}

// OpenSQLiteJournal opens or creates the journal at dbPath. A journal created
// by a different embedder or dimension is rejected with ErrJournalMismatch.
func OpenSQLiteJournal(dbPath, embedderName string, dims int) (*SQLiteJournal, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Appends are serialized anyway; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{
		db:       db,
		dbPath:   dbPath,
		embedder: embedderName,
		dims:     dims,
	}

	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := j.checkMetadata(); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// initSchema creates the database schema
func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		model TEXT NOT NULL,
		vector BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_model ON records(model);
	`

	_, err := j.db.Exec(schema)
	return err
}

// checkMetadata stamps a fresh journal with the embedder identity, or
// verifies that an existing one was written by the same embedder.
func (j *SQLiteJournal) checkMetadata() error {
	storedEmbedder, err := j.getMetadata("embedder")
	if err == sql.ErrNoRows {
		if err := j.setMetadata("version", "1"); err != nil {
			return err
		}
		if err := j.setMetadata("embedder", j.embedder); err != nil {
			return err
		}
		if err := j.setMetadata("dimensions", strconv.Itoa(j.dims)); err != nil {
			return err
		}
		return j.setMetadata("created_at", time.Now().Format(time.RFC3339))
	}
	if err != nil {
		return fmt.Errorf("failed to read embedder metadata: %w", err)
	}

	if storedEmbedder != j.embedder {
		return fmt.Errorf("%w: embedder changed: %s → %s", ErrJournalMismatch, storedEmbedder, j.embedder)
	}

	storedDims, err := j.getMetadata("dimensions")
	if err != nil {
		return fmt.Errorf("failed to read dimensions metadata: %w", err)
	}
	if storedDims != strconv.Itoa(j.dims) {
		return fmt.Errorf("%w: dimensions changed: %s → %d", ErrJournalMismatch, storedDims, j.dims)
	}

	return nil
}

// Append stores rec after every previously appended record
func (j *SQLiteJournal) Append(ctx context.Context, rec Record) error {
	if len(rec.Embedding) != j.dims {
		return fmt.Errorf("%w: record has %d, journal expects %d", ErrDimensionMismatch, len(rec.Embedding), j.dims)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO records (id, question, answer, model, vector, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Question, rec.Answer, rec.Model, encodeVector(rec.Embedding), rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// Load returns every record in insertion order
func (j *SQLiteJournal) Load(ctx context.Context) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, question, answer, model, vector, created_at
		FROM records
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var vectorBlob []byte
		var createdAt int64

		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Model, &vectorBlob, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		rec.Embedding, err = decodeVector(vectorBlob)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		rec.CreatedAt = time.Unix(0, createdAt)

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// Count returns the number of journaled records
func (j *SQLiteJournal) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	var count int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count)
	if err != nil {
		return 0
	}

	return count
}

// Path returns the database file location
func (j *SQLiteJournal) Path() string {
	return j.dbPath
}

// Close closes the database connection
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// getMetadata retrieves a metadata value; sql.ErrNoRows when absent
func (j *SQLiteJournal) getMetadata(key string) (string, error) {
	var value string
	err := j.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	return value, err
}

// setMetadata stores a metadata value
func (j *SQLiteJournal) setMetadata(key, value string) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO metadata (key, value)
		VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", key, err)
	}
	return nil
}

// encodeVector encodes a float32 slice to binary
func encodeVector(v []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// decodeVector decodes binary data to a float32 slice
func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	return v, nil
}
