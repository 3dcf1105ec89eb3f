package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xwteam/mascot/internal/live2d"
)

// avatarRoute describes how one avatar-config endpoint reads its inputs and
// shapes its output.
type avatarRoute struct {
	pattern string
	// persona is fixed when set; otherwise the "p" query parameter decides.
	persona string
	// keyParam names the query parameter carrying an explicit catalog key.
	keyParam string
	// seedParam names the query parameter carrying the numeric seed.
	seedParam string
	// seedFromPath reads the seed from the "{seed}.json" path segment instead.
	seedFromPath bool
	base         string
	useDefault   bool
	timestamp    bool
	// strict routes add cache busters, debug fields and CDN no-store headers.
	strict bool
}

var avatarRoutes = []avatarRoute{
	{pattern: "/api/live2d.json", seedParam: "id", base: "../", useDefault: true},
	{pattern: "/api/live2d-v2.json", seedParam: "id", base: "../", useDefault: true, timestamp: true},
	{pattern: "/api/live2d-22.json", persona: live2d.Persona22, seedParam: "id", base: "../", useDefault: true},
	{pattern: "/api/live2d-33.json", persona: live2d.Persona33, keyParam: "model", seedParam: "t", base: "../", strict: true},
	{pattern: "/api/live2d-22/{file}", persona: live2d.Persona22, seedFromPath: true, base: "../../", strict: true},
	{pattern: "/api/live2d-33/{file}", persona: live2d.Persona33, seedFromPath: true, base: "../../", strict: true},
}

func handleAvatar(deps Deps, rt avatarRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rng := deps.rng()

		persona := rt.persona
		if persona == "" {
			persona = live2d.PickPersona(q.Get("p"), rng)
		}

		var p live2d.Params
		if rt.keyParam != "" {
			p.Key = q.Get(rt.keyParam)
		}
		if rt.seedFromPath {
			seed, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
			if !ok {
				http.NotFound(w, r)
				return
			}
			p.Seed = seed
		} else if rt.seedParam != "" {
			p.Seed = q.Get(rt.seedParam)
		}
		if rt.useDefault {
			p.DefaultIndex = deps.DefaultIndex
		}

		sel := live2d.Select(deps.Catalog, deps.AllowAdult, p, rng)
		slog.Debug("avatar selected",
			"route", rt.pattern,
			"persona", persona,
			"key", sel.Key,
			"index", sel.Index,
			"seed", p.Seed,
		)

		now := deps.now()
		opts := live2d.SettingOptions{BaseURL: rt.base}
		if rt.timestamp {
			opts.Timestamp = now.UnixMilli()
		}
		if rt.strict {
			stamp, suffix := live2d.CacheBuster(now, rng)
			opts.CacheBuster = suffix
			opts.Debug = debugInfo(stamp, sel, p.Seed, requestURL(r))
		}

		setNoCacheHeaders(w, rt.strict)
		writeJSON(w, live2d.NewModelSetting(persona, sel, opts))
	}
}

func debugInfo(stamp int64, sel live2d.Selection, rawSeed, url string) *live2d.Debug {
	d := &live2d.Debug{
		Timestamp: stamp,
		ModelID:   sel.Index,
		ModelName: sel.Key,
		URL:       url,
	}
	if rawSeed != "" {
		d.TParam = &rawSeed
		if k, ok := live2d.ParseSeed(rawSeed); ok {
			d.Seed = k
		}
	}
	return d
}

func setNoCacheHeaders(w http.ResponseWriter, strict bool) {
	h := w.Header()
	if strict {
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate, max-age=0")
		h.Set("CDN-Cache-Control", "no-store")
		h.Set("Cloudflare-CDN-Cache-Control", "no-store")
		h.Set("Vary", "*")
	} else {
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

// requestURL reconstructs the absolute URL the client asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
