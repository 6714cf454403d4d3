package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// HealthHandler serves liveness/readiness probes plus the supplemented
// GET /status endpoint (spec.md §4 supplemented features).
type HealthHandler struct {
	store        store.MultiStore
	babelVersion string
	startAt      time.Time
}

// NewHealthHandler builds a HealthHandler. babelVersion is reported as-is
// in the /status response, following the original's BABEL_VERSION field.
func NewHealthHandler(s store.MultiStore, babelVersion string) *HealthHandler {
	return &HealthHandler{store: s, babelVersion: babelVersion, startAt: time.Now()}
}

// Liveness handles GET /healthz. It never checks the backing store: a
// running process is, by definition, alive.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"uptime": time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz, confirming the MultiStore answers a cheap
// key-count query before declaring readiness.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if _, err := h.store.KeyCount(c.Request.Context(), store.StoreEqToCanonical); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// statusResponse is the GET /status payload (spec.md §4 supplemented
// feature).
type statusResponse struct {
	BabelVersion string           `json:"babel_version"`
	StoreCounts  map[string]int64 `json:"store_counts"`
}

// statusStores lists every logical store whose key count is reported by
// /status.
var statusStores = []store.StoreName{
	store.StoreEqToCanonical,
	store.StoreCanonicalMembers,
	store.StoreCanonicalCategory,
	store.StoreCanonicalIC,
	store.StoreCategoryPrefixes,
	store.StoreConflationGeneProtein,
	store.StoreConflationDrugChemical,
}

// Status handles GET /status, reporting service version and per-store key
// counts via MultiStore.KeyCount (spec.md §4 supplemented feature).
func (h *HealthHandler) Status(c *gin.Context) {
	counts := make(map[string]int64, len(statusStores))
	for _, name := range statusStores {
		n, err := h.store.KeyCount(c.Request.Context(), name)
		if err != nil {
			writeAppError(c, err)
			return
		}
		counts[string(name)] = n
	}
	c.JSON(http.StatusOK, statusResponse{BabelVersion: h.babelVersion, StoreCounts: counts})
}
