package http

import (
	"net/http"

	"github.com/vaultmind/accountd/pkg/httpx"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (rt *Router) registerSystem() {
	rt.handle("GET /livez", http.HandlerFunc(rt.handleLivez))
	rt.handle("GET /readyz", http.HandlerFunc(rt.handleReadyz))
}

// handleLivez always answers ok while the process is up.
func (rt *Router) handleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReadyz checks the store round-trip as well.
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if err := rt.store.Ping(r.Context()); err != nil {
		res.Status = "degraded"
		res.Database = "error: " + err.Error()
		code = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, code, res)
}
