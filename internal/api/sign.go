package api

import (
	"log/slog"
	"net/http"
	"strings"
)

func handleSign(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		referer := r.Referer()
		if referer != "" && !refererAllowed(deps.AllowedDomains, referer, requestURL(r)) {
			slog.Warn("sign request rejected", "referer", referer)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Forbidden"))
			return
		}

		svg := deps.Cards.Build(r.Context(), r.Header)

		setNoCacheHeaders(w, false)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		w.Write(svg)
	}
}

// refererAllowed reports whether the referer or the request URL mentions an
// allow-listed domain. Substring matching only; the header is client-controlled.
func refererAllowed(domains []string, referer, url string) bool {
	for _, d := range domains {
		if strings.Contains(referer, d) || strings.Contains(url, d) {
			return true
		}
	}
	return false
}
