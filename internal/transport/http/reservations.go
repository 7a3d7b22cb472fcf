package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Erblinn450/Spootfoot/internal/app"
	"github.com/Erblinn450/Spootfoot/internal/domain"
)

// ReservationCreator is the minimal interface needed to reserve a slot.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, in app.CreateReservationInput) (app.CreateReservationResult, error)
}

// HandleCreateReservation returns the handler for POST /reservations.
func HandleCreateReservation(svc ReservationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createReservationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.SlotID == "" {
			writeError(w, http.StatusBadRequest, codeSlotIDRequired, "slotId required")
			return
		}

		res, err := svc.CreateReservation(r.Context(), app.CreateReservationInput{
			SlotID:         req.SlotID,
			OrganizerEmail: req.OrganizerEmail,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrSlotNotFound):
				writeError(w, http.StatusNotFound, codeSlotNotFound, err.Error())
			case errors.Is(err, domain.ErrSlotNotOpen):
				writeError(w, http.StatusConflict, codeSlotNotOpen, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, createReservationResponse{InviteURL: res.InviteURL})
	}
}

type createReservationRequest struct {
	SlotID         string `json:"slotId"`
	OrganizerEmail string `json:"organizerEmail,omitempty"`
}

type createReservationResponse struct {
	InviteURL string `json:"inviteUrl"`
}
