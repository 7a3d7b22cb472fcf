package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Erblinn450/Spootfoot/internal/app"
	"github.com/Erblinn450/Spootfoot/internal/domain"
)

// SlotAdmin is the minimal interface behind the admin slot endpoints.
type SlotAdmin interface {
	CreateSlot(ctx context.Context, in app.CreateSlotInput) (domain.Slot, error)
	CancelSlot(ctx context.Context, id string) (domain.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	DeleteAllSlots(ctx context.Context) (int64, error)
}

// RequireAdminToken gates a handler behind `Authorization: Bearer <token>`.
// It stands in for the real identity layer, which lives outside this service.
// An empty configured token disables the admin surface entirely.
func RequireAdminToken(adminToken string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if adminToken == "" {
			writeError(w, http.StatusForbidden, codeForbidden, "admin surface disabled")
			return
		}
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleAdminSlots routes POST/DELETE /admin/slots and
// POST /admin/slots/{id}/cancel, DELETE /admin/slots/{id}.
func HandleAdminSlots(svc SlotAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseAdminSlotPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case id == "" && r.Method == http.MethodPost:
			handleCreateSlot(w, r, svc)
		case id == "" && r.Method == http.MethodDelete:
			handleDeleteAllSlots(w, r, svc)
		case action == "cancel" && r.Method == http.MethodPost:
			handleCancelSlot(w, r, svc, id)
		case action == "" && id != "" && r.Method == http.MethodDelete:
			handleDeleteSlot(w, r, svc, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func handleCreateSlot(w http.ResponseWriter, r *http.Request, svc SlotAdmin) {
	var req createSlotRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	slot, err := svc.CreateSlot(r.Context(), app.CreateSlotInput{
		TerrainID:   req.TerrainID,
		StartAt:     req.StartAt,
		DurationMin: req.DurationMin,
		Capacity:    req.Capacity,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTerrainIDRequired):
			writeError(w, http.StatusBadRequest, codeTerrainIDRequired, err.Error())
		case errors.Is(err, domain.ErrInvalidStartAt):
			writeError(w, http.StatusBadRequest, codeInvalidStartAt, err.Error())
		case errors.Is(err, domain.ErrInvalidDuration):
			writeError(w, http.StatusBadRequest, codeInvalidDuration, err.Error())
		case errors.Is(err, domain.ErrInvalidCapacity):
			writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
		case errors.Is(err, domain.ErrInvalidID):
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toSlotResponse(slot))
}

func handleCancelSlot(w http.ResponseWriter, r *http.Request, svc SlotAdmin, id string) {
	slot, err := svc.CancelSlot(r.Context(), id)
	if err != nil {
		writeAdminSlotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponse(slot))
}

func handleDeleteSlot(w http.ResponseWriter, r *http.Request, svc SlotAdmin, id string) {
	if err := svc.DeleteSlot(r.Context(), id); err != nil {
		writeAdminSlotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteSlotResponse{Deleted: 1, ID: id})
}

func handleDeleteAllSlots(w http.ResponseWriter, r *http.Request, svc SlotAdmin) {
	n, err := svc.DeleteAllSlots(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, deleteAllSlotsResponse{DeletedCount: n})
}

func writeAdminSlotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, codeSlotNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parseAdminSlotPath(path string) (id, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "admin" || parts[1] != "slots" {
		return "", "", false
	}
	switch len(parts) {
	case 2:
		return "", "", true
	case 3:
		if parts[2] == "" {
			return "", "", false
		}
		return parts[2], "", true
	case 4:
		if parts[2] == "" || parts[3] != "cancel" {
			return "", "", false
		}
		return parts[2], parts[3], true
	}
	return "", "", false
}

type createSlotRequest struct {
	TerrainID   string    `json:"terrainId"`
	StartAt     time.Time `json:"startAt"`
	DurationMin int       `json:"durationMin,omitempty"`
	Capacity    int       `json:"capacity,omitempty"`
}

type deleteSlotResponse struct {
	Deleted int    `json:"deleted"`
	ID      string `json:"id"`
}

type deleteAllSlotsResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}
