package migrations

import (
	"strings"
	"testing"
)

func TestAllVersionsAreSequential(t *testing.T) {
	for i, migration := range All() {
		if migration.Version != i+1 {
			t.Fatalf("migration %d has version %d, want %d", i, migration.Version, i+1)
		}
		if strings.TrimSpace(migration.Up) == "" || strings.TrimSpace(migration.Down) == "" {
			t.Fatalf("migration %d is missing up or down statement", migration.Version)
		}
	}
}

func TestAllCreatesDatasetTables(t *testing.T) {
	tables := []string{"job_postings_fact", "skills_dim", "skills_job_dim"}
	all := All()
	for i, table := range tables {
		if !strings.Contains(all[i].Up, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("migration %d does not create %s", all[i].Version, table)
		}
	}
}
