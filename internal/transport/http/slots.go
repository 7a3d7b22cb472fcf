package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Erblinn450/Spootfoot/internal/domain"
)

// SlotLister is the minimal interface behind the public slot listing.
type SlotLister interface {
	ListBookable(ctx context.Context) ([]domain.Slot, error)
}

// HandleListSlots returns the handler for GET /slots: bookable slots only,
// earliest first.
func HandleListSlots(svc SlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		slots, err := svc.ListBookable(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type slotResponse struct {
	ID          string    `json:"id"`
	TerrainID   string    `json:"terrainId"`
	StartAt     time.Time `json:"startAt"`
	DurationMin int       `json:"durationMin"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:          s.ID,
		TerrainID:   s.TerrainID,
		StartAt:     s.StartAt,
		DurationMin: s.DurationMin,
		Capacity:    s.Capacity,
		Status:      string(s.Status),
	}
}
