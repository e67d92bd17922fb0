// Package language lists the vocabularies served and maps between their client
// path names and the names stored in the database.
package language

import (
	"fmt"
	"strings"

	"wilhelm/internal/apperr"
)

// Language is one served vocabulary.
type Language struct {
	pathName     string
	databaseName string
}

var (
	German       = Language{pathName: "german", databaseName: "German"}
	AncientGreek = Language{pathName: "ancientGreek", databaseName: "Ancient Greek"}
	Latin        = Language{pathName: "latin", databaseName: "Latin"}
)

// All returns every supported language.
func All() []Language {
	return []Language{German, AncientGreek, Latin}
}

// PathName is the name clients use in request paths.
func (l Language) PathName() string { return l.pathName }

// DatabaseName is the value of the language attribute on stored terms.
func (l Language) DatabaseName() string { return l.databaseName }

func (l Language) String() string { return l.databaseName }

// UnknownError reports a language name that matches no supported language.
type UnknownError struct {
	Name       string
	Acceptable []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("'%s' is not a recognized language. Acceptable ones are %s", e.Name, strings.Join(e.Acceptable, ", "))
}

func (e *UnknownError) Unwrap() error {
	return apperr.ErrInvalidLanguage
}

// OfClientValue resolves a client path name such as "ancientGreek".
func OfClientValue(name string) (Language, error) {
	return lookup(name, Language.PathName)
}

// OfDatabaseName resolves a stored name such as "Ancient Greek".
func OfDatabaseName(name string) (Language, error) {
	return lookup(name, Language.DatabaseName)
}

func lookup(name string, nameOf func(Language) string) (Language, error) {
	var acceptable []string
	for _, l := range All() {
		if nameOf(l) == name {
			return l, nil
		}
		acceptable = append(acceptable, nameOf(l))
	}
	return Language{}, &UnknownError{Name: name, Acceptable: acceptable}
}
