package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Level string `yaml:"level"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "wilhelm")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 9090\n")

	s := sample{Level: "info"}
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "wilhelm" || s.Port != 9090 || s.Level != "info" {
		t.Errorf("unexpected config %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	s := sample{}
	if err := Load(path, &s); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Port != 8080 {
		t.Errorf("defaults changed: %+v", s)
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &s); err == nil {
		t.Error("Load should fail for a missing file")
	}
}
