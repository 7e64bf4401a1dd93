package govserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the thin HTTP introspection surface: a health check and a
// debug namespace exposing the domain table and in-flight query count. The
// tool surface itself (query_governance, evaluate_governance, ...) is
// served over the MCP transport, not HTTP; this router exists only for
// operators to confirm the process is alive and see what it loaded.
func (c *Core) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", c.handleHealthz)
	r.Get("/debug/domains", c.handleDebugDomains)
	r.Get("/debug/stats", c.handleDebugStats)
	return r
}

func (c *Core) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Core) handleDebugDomains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"domains": c.idx.Domains()})
}

func (c *Core) handleDebugStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"principles":          len(c.idx.AllPrinciples()),
		"methods":             len(c.idx.AllMethods()),
		"domains":             len(c.idx.Domains()),
		"audit_records":       c.store.Len(),
		"max_in_flight":       cap(c.admission),
		"in_flight":           len(c.admission),
		"index_format_version": c.idx.Header.FormatVersion,
		"corpus_hash":         c.idx.Header.CorpusHash,
	}
	respondJSON(w, http.StatusOK, stats)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
