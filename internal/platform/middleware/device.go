package middleware

import (
	"fmt"
	"net/http"

	"github.com/mssola/useragent"

	"pinky/pkg/requestcontext"
)

// Device parses the User-Agent header into a compact summary and stores it in
// context. Guest evaluations arrive from arbitrary browsers via share links;
// the summary ends up on audit events, never in business logic.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ua := useragent.New(raw)
		browser, version := ua.Browser()
		summary := fmt.Sprintf("%s %s/%s", ua.OS(), browser, version)
		if ua.Mobile() {
			summary += " (mobile)"
		}
		ctx := requestcontext.WithDevice(r.Context(), summary)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
