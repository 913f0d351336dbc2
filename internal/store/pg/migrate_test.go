package pg

import (
	"strings"
	"testing"

	migrations "github.com/dropDatabas3/quicklendar/migrations/postgres"
)

func TestParseMigrations(t *testing.T) {
	ms, err := ParseMigrations(migrations.FS)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ms) < 2 {
		t.Fatalf("len = %d, want >= 2", len(ms))
	}

	// ordenadas y con versiones crecientes
	for i := 1; i < len(ms); i++ {
		if ms[i].Version <= ms[i-1].Version {
			t.Fatalf("versiones desordenadas: %d luego de %d", ms[i].Version, ms[i-1].Version)
		}
	}

	if ms[0].Version != 1 || ms[0].Name != "init" {
		t.Fatalf("primera migración = %d %q", ms[0].Version, ms[0].Name)
	}
	if !strings.Contains(ms[0].SQL, "CREATE TABLE") {
		t.Fatal("la migración embebida no trae SQL")
	}
	if ms[1].Name != "competitions" {
		t.Fatalf("segunda migración = %q", ms[1].Name)
	}
}

func TestMigrationFilePattern(t *testing.T) {
	valid := map[string][2]string{
		"0001_init.sql":            {"0001", "init"},
		"0002_competitions.sql":    {"0002", "competitions"},
		"10_add_index_on_host.sql": {"10", "add_index_on_host"},
	}
	for name, want := range valid {
		m := migrationFilePattern.FindStringSubmatch(name)
		if m == nil {
			t.Fatalf("%q no matchea", name)
		}
		if m[1] != want[0] || m[2] != want[1] {
			t.Fatalf("%q -> %v, want %v", name, m[1:], want)
		}
	}

	for _, name := range []string{"init.sql", "0001_init.txt", "0001.sql", "readme.md"} {
		if migrationFilePattern.MatchString(name) {
			t.Fatalf("%q no debería matchear", name)
		}
	}
}
