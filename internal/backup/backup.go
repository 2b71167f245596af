package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qri-io/jsonschema"

	"github.com/naebak/naebak/internal/db"
)

var logger *slog.Logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// SetLogger overrides the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// FormatVersion is bumped when the dump layout changes incompatibly.
const FormatVersion = "1.0"

// dumpTables lists tables in foreign-key order: parents before
// children so a restore can insert top to bottom with FK checks on.
var dumpTables = []string{
	"accounts",
	"citizens",
	"candidates",
	"electoral_promises",
	"service_history",
	"messages",
	"ratings",
	"rating_replies",
	"votes",
	"news",
	"activity_log",
}

// Metadata identifies a dump.
type Metadata struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	CreatedAt int64  `json:"created_at"`
}

// Document is the full JSON dump: every table's rows keyed by table
// name, primary keys preserved so foreign keys survive a round trip.
type Document struct {
	Metadata Metadata                    `json:"metadata"`
	Tables   map[string][]map[string]any `json:"tables"`
}

// documentSchema guards restores against malformed or truncated dumps
// before any row touches the database.
const documentSchema = `{
	"type": "object",
	"required": ["metadata", "tables"],
	"properties": {
		"metadata": {
			"type": "object",
			"required": ["id", "version", "created_at"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"version": {"type": "string", "minLength": 1},
				"created_at": {"type": "integer"}
			}
		},
		"tables": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "object"}
			}
		}
	}
}`

// Dump reads every table into a Document. The dump is not a consistent
// snapshot across concurrent writers; run it against a quiet database.
func Dump(ctx context.Context, conn *db.DB) (*Document, error) {
	doc := &Document{
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Version:   FormatVersion,
			CreatedAt: nowMillis(),
		},
		Tables: make(map[string][]map[string]any, len(dumpTables)),
	}

	for _, table := range dumpTables {
		rows, err := dumpTable(ctx, conn, table)
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		doc.Tables[table] = rows
	}

	logger.Info("backup dump complete", "backup_id", doc.Metadata.ID, "tables", len(doc.Tables))
	return doc, nil
}

func dumpTable(ctx context.Context, conn *db.DB, table string) ([]map[string]any, error) {
	rows, err := conn.QueryRows(ctx, `SELECT * FROM `+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// WriteFile dumps the database to path as indented JSON.
func WriteFile(ctx context.Context, conn *db.DB, path string) (*Metadata, error) {
	doc, err := Dump(ctx, conn)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("write backup file: %w", err)
	}
	return &doc.Metadata, nil
}

// Validate checks raw dump bytes against the document schema and
// returns the decoded document on success.
func Validate(ctx context.Context, raw []byte) (*Document, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(documentSchema), rs); err != nil {
		return nil, fmt.Errorf("compile backup schema: %w", err)
	}

	verrs, err := rs.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("validate backup: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("invalid backup document: %s", verrs[0].Error())
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode backup document: %w", err)
	}
	if doc.Metadata.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported backup version %q", doc.Metadata.Version)
	}
	for table := range doc.Tables {
		if !knownTable(table) {
			return nil, fmt.Errorf("unknown table %q in backup", table)
		}
	}
	return &doc, nil
}

// Restore inserts the document's rows in foreign-key order inside one
// transaction. With clear set, existing rows are deleted first in
// reverse order so the restore fully replaces the current data.
// Primary keys are inserted as stored so foreign keys stay valid.
func Restore(ctx context.Context, conn *db.DB, doc *Document, clear bool) error {
	if doc == nil {
		return fmt.Errorf("backup document is nil")
	}
	for table := range doc.Tables {
		if !knownTable(table) {
			return fmt.Errorf("unknown table %q in backup", table)
		}
	}

	var restored int
	err := conn.WithTx(ctx, func(tx *sql.Tx) error {
		if clear {
			for i := len(dumpTables) - 1; i >= 0; i-- {
				if _, err := tx.ExecContext(ctx, `DELETE FROM `+dumpTables[i]); err != nil {
					return fmt.Errorf("clear %s: %w", dumpTables[i], err)
				}
			}
		}

		for _, table := range dumpTables {
			rows := doc.Tables[table]
			for _, row := range rows {
				if err := insertRow(ctx, tx, table, row); err != nil {
					return fmt.Errorf("restore %s: %w", table, err)
				}
			}
			restored += len(rows)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("backup restore complete", "backup_id", doc.Metadata.ID, "rows", restored)
	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, table string, row map[string]any) error {
	if len(row) == 0 {
		return fmt.Errorf("empty row")
	}

	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	for _, col := range cols {
		v := row[col]
		// JSON numbers decode as float64; integral values go back as
		// int64 so sqlite stores them as integers.
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			v = int64(f)
		}
		args = append(args, v)
	}

	query := `INSERT INTO ` + table + ` (` + strings.Join(cols, ", ") + `) VALUES (` + placeholders(len(cols)) + `)`
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

func knownTable(name string) bool {
	for _, t := range dumpTables {
		if t == name {
			return true
		}
	}
	return false
}
