package reports

import (
	"context"
	"log/slog"
	"net/http"

	"assetbase/internal/httpx"
)

type statsStore interface {
	AssetStats(ctx context.Context) (*Stats, error)
}

type Handler struct {
	Store  statsStore
	Logger *slog.Logger
}

// AssetStatsHandler handles GET /api/v1/reports/assets.
func (h *Handler) AssetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.AssetStats(r.Context())
	if err != nil {
		h.Logger.Error("asset stats", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
