// Package api implements the REST surface using chi.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wilhelm/internal/language"
)

type languageKey struct{}

// LanguageCheck resolves the {language} path parameter and aborts with 400 when it is unknown.
func LanguageCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang, err := language.OfClientValue(chi.URLParam(r, "language"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		ctx := context.WithValue(r.Context(), languageKey{}, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func languageFrom(ctx context.Context) language.Language {
	lang, _ := ctx.Value(languageKey{}).(language.Language)
	return lang
}
