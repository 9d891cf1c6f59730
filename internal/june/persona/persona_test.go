package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func writePersona(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".toml"), []byte(content), 0644); err != nil {
		t.Fatalf("writing persona file: %v", err)
	}
}

func TestResolveSubstitutesPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writePersona(t, dir, "tutor", `
system = "You are a patient {{subject}} tutor."

[sampling]
temperature = 0.3
`)

	p, err := Resolve("tutor", []string{dir}, []string{"subject:history"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.System != "You are a patient history tutor." {
		t.Errorf("system = %q", p.System)
	}
	if p.Sampling["temperature"] != 0.3 {
		t.Errorf("sampling temperature = %v, want 0.3", p.Sampling["temperature"])
	}
}

func TestResolveLaterDirectoriesWin(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writePersona(t, low, "base", `system = "from low"`)
	writePersona(t, high, "base", `system = "from high"`)

	p, err := Resolve("base", []string{low, high}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.System != "from high" {
		t.Errorf("system = %q, want the later directory to win", p.System)
	}
}

func TestResolveMissingPersona(t *testing.T) {
	if _, err := Resolve("ghost", []string{t.TempDir()}, nil); err == nil {
		t.Fatal("expected an error for a missing persona")
	}
}

func TestProcessArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantKey string
		want    string
		wantErr bool
	}{
		{name: "simple pair", args: []string{"subject:math"}, wantKey: "subject", want: "math"},
		{name: "escaped colon", args: []string{`url:http\://example.com`}, wantKey: "url", want: "http://example.com"},
		{name: "missing colon", args: []string{"subject"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := processArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("processArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got[tt.wantKey] != tt.want {
				t.Errorf("processArgs()[%q] = %q, want %q", tt.wantKey, got[tt.wantKey], tt.want)
			}
		})
	}
}
