package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/govretrieve/internal/models"
)

func rec(id string, principles ...string) models.AuditRecord {
	return models.AuditRecord{
		AuditID:              id,
		Timestamp:            time.Unix(0, 0),
		ActionReviewed:       "test action",
		Assessment:           models.VerdictProceed,
		RelevantPrincipleIDs: principles,
	}
}

func TestAppendAndGet(t *testing.T) {
	s, err := Open(10, "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Append(rec("a1", "p1")); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get("a1")
	if !ok || got.AuditID != "a1" {
		t.Errorf("expected to find a1, got %v ok=%v", got, ok)
	}
}

func TestAppend_EvictsOldestAtCapacity(t *testing.T) {
	s, err := Open(2, "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Append(rec("a1"))
	s.Append(rec("a2"))
	s.Append(rec("a3"))

	if _, ok := s.Get("a1"); ok {
		t.Error("expected a1 to be evicted")
	}
	if _, ok := s.Get("a3"); !ok {
		t.Error("expected a3 to remain")
	}
	if s.Len() != 2 {
		t.Errorf("expected len 2, got %d", s.Len())
	}
}

func TestAll_ReturnsSnapshotInInsertionOrder(t *testing.T) {
	s, err := Open(10, "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Append(rec("a1"))
	s.Append(rec("a2"))

	all := s.All()
	if len(all) != 2 || all[0].AuditID != "a1" || all[1].AuditID != "a2" {
		t.Errorf("unexpected snapshot order: %v", all)
	}
}

func TestOpen_PersistsAndReplaysAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "audit.db")

	s1, err := Open(10, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Append(rec("a1", "p1")); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(10, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, ok := s2.Get("a1"); !ok {
		t.Error("expected a1 to survive restart via bbolt replay")
	}
}
