package cast

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Yates-Labs/sitcom/internal/script"
)

const professorsJSON = `{"characters":[
	{"name":"Dr. Babcock","description":"a professor who loves his Mac"},
	{"name":"Prof. Hake","description":"a physicist who explains everything with springs."},
	{"name":"Dr. Moscola","description":"a professor who hates the Windows operating system"},
	{"name":"Prof. Zeller","description":"a historian who distrusts computers"}
]}`

func TestParseRoster(t *testing.T) {
	r, err := ParseRoster(professorsJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(r.Characters) != 4 {
		t.Fatalf("expected 4 characters, got %d", len(r.Characters))
	}

	names := r.Names()
	if names[0] != "Dr. Babcock" || names[3] != "Prof. Zeller" {
		t.Errorf("roster order not preserved: %v", names)
	}

	c, ok := r.Lookup("  dr.  MOSCOLA ")
	if !ok || c.Name != "Dr. Moscola" {
		t.Errorf("expected case-insensitive lookup, got %+v, %v", c, ok)
	}
	if _, ok := r.Lookup("Dr. Who"); ok {
		t.Error("unexpected match for unknown name")
	}
}

func TestRoster_Describe(t *testing.T) {
	r, err := ParseRoster(professorsJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	desc := r.Describe()
	if !strings.HasPrefix(desc, "Dr. Babcock is a professor who loves his Mac. Prof. Hake is") {
		t.Errorf("unexpected description: %s", desc)
	}
	if strings.Contains(desc, "springs..") {
		t.Error("description should not double the full stop")
	}
}

func TestParseRoster_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"invalid json", `{"characters":`, script.ErrParse},
		{"missing section", `{"cast":[]}`, script.ErrParse},
		{"empty", `{"characters":[]}`, ErrRoster},
		{"no name", `{"characters":[{"description":"nobody"}]}`, ErrRoster},
		{"duplicate", `{"characters":[{"name":"A"},{"name":"a"}]}`, ErrRoster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoster(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRoster_ResolvesPortraitPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "character_desc.json")
	raw := `{"characters":[{"name":"A","portrait":"a.png"},{"name":"B","portrait":"/abs/b.png"},{"name":"C"}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := r.PortraitPath(r.Characters[0]); got != filepath.Join(dir, "a.png") {
		t.Errorf("expected relative portrait path, got %s", got)
	}
	if got := r.PortraitPath(r.Characters[1]); got != "/abs/b.png" {
		t.Errorf("expected absolute path kept, got %s", got)
	}
	if got := r.PortraitPath(r.Characters[2]); got != "" {
		t.Errorf("expected no portrait, got %s", got)
	}
}

func TestLoadRoster_MissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrRoster) {
		t.Errorf("expected ErrRoster, got %v", err)
	}
}
