package core

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseReportID(t *testing.T) {
	id := NewReportID()
	parsed, err := ParseReportID(" " + id.String() + " ")
	if err != nil {
		t.Fatalf("ParseReportID failed: %v", err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	for _, bad := range []string{"", "   ", "report-1"} {
		if _, err := ParseReportID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestHashFile_MatchesNewHash(t *testing.T) {
	data := []byte("IID,Y3SEXE,Y3CERT\n1,1,10\n")
	path := filepath.Join(t.TempDir(), "survey.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if got != NewHash(data) {
		t.Errorf("Expected %s, got %s", NewHash(data), got)
	}
	if len(got.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", got.Short())
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}
