package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Weekday
		wantErr bool
	}{
		{"Sunday", time.Sunday, false},
		{"monday", time.Monday, false},
		{"  Friday  ", time.Friday, false},
		{"SATURDAY", time.Saturday, false},
		{"Someday", time.Sunday, true},
		{"", time.Sunday, true},
	}

	for _, tt := range tests {
		got, err := ParseWeekday(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWeekday(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.yaml")
	dst := filepath.Join(dir, "dst.yaml")

	content := []byte("api:\n  baseurl: https://api.sxcat.org\n")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := moveFile(src, dst); err != nil {
		t.Fatalf("moveFile failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file should be gone after move")
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if string(got) != string(content) {
		t.Error("destination content does not match source")
	}
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	settings := validSettings()
	settings.Catalogue.Flavour = FlavourDR1
	settings.Observer.Latitude = 28.76

	if err := SaveYAMLConfig(configPath, settings); err != nil {
		t.Fatalf("SaveYAMLConfig failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}

	for _, want := range []string{"dr1", "28.76", "api.sxcat.org"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved config missing %q", want)
		}
	}
}
