package language

import (
	"errors"
	"strings"
	"testing"

	"wilhelm/internal/apperr"
)

func TestOfClientValue(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"german", German},
		{"ancientGreek", AncientGreek},
		{"latin", Latin},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := OfClientValue(tt.in)
			if err != nil {
				t.Fatalf("OfClientValue(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOfDatabaseName(t *testing.T) {
	got, err := OfDatabaseName("Ancient Greek")
	if err != nil {
		t.Fatalf("OfDatabaseName: %v", err)
	}
	if got.PathName() != "ancientGreek" {
		t.Errorf("path name = %q", got.PathName())
	}
	if _, err := OfDatabaseName("ancientGreek"); err == nil {
		t.Error("a client name is not a database name")
	}
}

func TestUnknownLanguage(t *testing.T) {
	_, err := OfClientValue("klingon")
	if !errors.Is(err, apperr.ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	want := "'klingon' is not a recognized language. Acceptable ones are german, ancientGreek, latin"
	if err.Error() != want {
		t.Errorf("message = %q", err.Error())
	}

	_, err = OfDatabaseName("Klingon")
	if !strings.Contains(err.Error(), "German, Ancient Greek, Latin") {
		t.Errorf("database lookup should list database names: %q", err.Error())
	}
}
