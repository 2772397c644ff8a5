package middleware

import (
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/i18n"
)

// Locale stores the request locale in the context. An explicit ?lang= wins
// over Accept-Language; anything unsupported resolves to English.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l, ok := i18n.ParseLocale(r.URL.Query().Get("lang"))
		if !ok {
			l = i18n.Negotiate(r.Header.Get("Accept-Language"))
		}
		w.Header().Set("Content-Language", string(l))
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), l)))
	})
}
