package backup_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dbfs "github.com/naebak/naebak/db"
	"github.com/naebak/naebak/internal/backup"
	dbpkg "github.com/naebak/naebak/internal/db"
	sqlite "github.com/naebak/naebak/internal/repository/sqlite"
	"github.com/naebak/naebak/pkg/models"
)

func openDB(t *testing.T, name string) *dbpkg.DB {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), name)
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return d
}

func seedSample(t *testing.T, d *dbpkg.DB) (citizenAccount, candidateID int64) {
	t.Helper()
	ctx := context.Background()
	repo := sqlite.New(d, nil)

	citizenAccount, citizenID, err := repo.RegisterCitizen(ctx,
		&models.Account{Username: "ahmed", Email: "ahmed@example.com", PasswordHash: "hash", FirstName: "Ahmed", LastName: "Tester"},
		&models.Citizen{FirstName: "Ahmed", LastName: "Tester", Email: "ahmed@example.com", PhoneNumber: "01000000001", GovernorateID: 1})
	if err != nil {
		t.Fatalf("RegisterCitizen error: %v", err)
	}

	_, candidateID, err = repo.CreateCandidateAccount(ctx,
		&models.Account{Username: "laila", Email: "laila@example.com", PasswordHash: "hash"},
		&models.Candidate{Name: "ليلى", GovernorateID: 2, Constituency: "الدائرة الأولى"})
	if err != nil {
		t.Fatalf("CreateCandidateAccount error: %v", err)
	}

	if _, err := repo.ToggleVote(ctx, candidateID, citizenID, models.VoteApprove); err != nil {
		t.Fatalf("ToggleVote error: %v", err)
	}
	return citizenAccount, candidateID
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openDB(t, "src")
	_, candidateID := seedSample(t, src)

	doc, err := backup.Dump(ctx, src)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	if doc.Metadata.ID == "" || doc.Metadata.Version != backup.FormatVersion {
		t.Fatalf("unexpected metadata: %#v", doc.Metadata)
	}
	if n := len(doc.Tables["accounts"]); n != 2 {
		t.Fatalf("dumped %d accounts, want 2", n)
	}
	if n := len(doc.Tables["votes"]); n != 1 {
		t.Fatalf("dumped %d votes, want 1", n)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal dump: %v", err)
	}
	checked, err := backup.Validate(ctx, raw)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}

	dst := openDB(t, "dst")
	if err := backup.Restore(ctx, dst, checked, false); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	repo := sqlite.New(dst, nil)
	account, err := repo.GetAccountByEmail(ctx, "ahmed@example.com")
	if err != nil || account == nil {
		t.Fatalf("restored account missing (err=%v)", err)
	}
	candidate, err := repo.GetCandidateByID(ctx, candidateID)
	if err != nil || candidate == nil {
		t.Fatalf("restored candidate missing (err=%v)", err)
	}
	if candidate.Name != "ليلى" {
		t.Fatalf("candidate name = %q", candidate.Name)
	}

	stats, err := repo.CandidateStats(ctx, candidateID)
	if err != nil {
		t.Fatalf("CandidateStats error: %v", err)
	}
	if stats.TotalVotes != 1 || stats.ApproveVotes != 1 {
		t.Fatalf("restored vote stats = %#v", stats)
	}
}

func TestRestoreClearReplaces(t *testing.T) {
	ctx := context.Background()
	src := openDB(t, "src")
	seedSample(t, src)

	doc, err := backup.Dump(ctx, src)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}

	// the destination already holds unrelated data that must not survive
	dst := openDB(t, "dst")
	repo := sqlite.New(dst, nil)
	if _, _, err := repo.RegisterCitizen(ctx,
		&models.Account{Username: "stale", Email: "stale@example.com", PasswordHash: "hash"},
		&models.Citizen{FirstName: "Stale", LastName: "Row", Email: "stale@example.com", GovernorateID: 1}); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	if err := backup.Restore(ctx, dst, doc, true); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	if account, err := repo.GetAccountByEmail(ctx, "stale@example.com"); err != nil || account != nil {
		t.Fatalf("stale account survived the restore (err=%v)", err)
	}
	if account, err := repo.GetAccountByEmail(ctx, "ahmed@example.com"); err != nil || account == nil {
		t.Fatalf("restored account missing (err=%v)", err)
	}
}

func TestWriteFile(t *testing.T) {
	ctx := context.Background()
	src := openDB(t, "src")
	seedSample(t, src)

	path := filepath.Join(t.TempDir(), "dump.json")
	meta, err := backup.WriteFile(ctx, src, path)
	if err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if meta.ID == "" || meta.Version != backup.FormatVersion {
		t.Fatalf("unexpected metadata: %#v", meta)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump file: %v", err)
	}
	doc, err := backup.Validate(ctx, raw)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if doc.Metadata.ID != meta.ID {
		t.Fatalf("metadata id mismatch: %q vs %q", doc.Metadata.ID, meta.ID)
	}
}

func TestValidateRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"metadata": {`},
		{"missing metadata", `{"tables": {}}`},
		{"wrong version", `{"metadata": {"id": "x", "version": "9.9", "created_at": 1}, "tables": {}}`},
		{"unknown table", `{"metadata": {"id": "x", "version": "1.0", "created_at": 1}, "tables": {"martians": []}}`},
		{"tables not arrays", `{"metadata": {"id": "x", "version": "1.0", "created_at": 1}, "tables": {"accounts": {}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := backup.Validate(ctx, []byte(tc.raw)); err == nil {
				t.Fatalf("expected %s to be rejected", tc.name)
			}
		})
	}
}

func TestRestoreRejectsUnknownTable(t *testing.T) {
	ctx := context.Background()
	dst := openDB(t, "dst")

	doc := &backup.Document{
		Metadata: backup.Metadata{ID: "x", Version: backup.FormatVersion, CreatedAt: 1},
		Tables:   map[string][]map[string]any{"martians": {}},
	}
	if err := backup.Restore(ctx, dst, doc, false); err == nil {
		t.Fatalf("expected unknown table to be rejected")
	}
	if err := backup.Restore(ctx, dst, nil, false); err == nil {
		t.Fatalf("expected nil document to be rejected")
	}
}
