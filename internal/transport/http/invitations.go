package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Erblinn450/Spootfoot/internal/app"
	"github.com/Erblinn450/Spootfoot/internal/domain"
)

// InvitationService is the minimal interface behind the invitation endpoints.
type InvitationService interface {
	GetInvitationInfo(ctx context.Context, secret string) (app.InvitationInfo, error)
	Accept(ctx context.Context, secret string) (int, error)
	Decline(ctx context.Context, secret string) error
}

// HandleInvitations routes GET /invitations/{token} and
// POST /invitations/{token}/accept|decline.
func HandleInvitations(svc InvitationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret, action, ok := parseInvitationPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleInvitationInfo(w, r, svc, secret)
		case "accept":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleAccept(w, r, svc, secret)
		case "decline":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleDecline(w, r, svc, secret)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleInvitationInfo(w http.ResponseWriter, r *http.Request, svc InvitationService, secret string) {
	info, err := svc.GetInvitationInfo(r.Context(), secret)
	if err != nil {
		writeInvitationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invitationInfoResponse{
		Slot: invitationSlot{
			StartAt:     info.Slot.StartAt,
			DurationMin: info.Slot.DurationMin,
			Capacity:    info.Slot.Capacity,
			Status:      string(info.Slot.Status),
		},
		Restants: info.Remaining,
	})
}

func handleAccept(w http.ResponseWriter, r *http.Request, svc InvitationService, secret string) {
	count, err := svc.Accept(r.Context(), secret)
	if err != nil {
		if errors.Is(err, domain.ErrSlotFull) {
			writeError(w, http.StatusConflict, codeSlotFull, "FULL")
			return
		}
		writeInvitationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acceptResponse{AcceptedCount: count})
}

func handleDecline(w http.ResponseWriter, r *http.Request, svc InvitationService, secret string) {
	if err := svc.Decline(r.Context(), secret); err != nil {
		writeInvitationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// writeInvitationError maps lookup failures. A missing slot behind an
// existing reservation is reported as a missing invitation; the token is the
// only identity an invitee holds.
func writeInvitationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrReservationNotFound), errors.Is(err, domain.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, codeInvitationNotFound, "invitation not found")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func parseInvitationPath(path string) (secret, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "invitations" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	return parts[1], parts[2], true
}

type invitationSlot struct {
	StartAt     time.Time `json:"startAt"`
	DurationMin int       `json:"durationMin"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
}

type invitationInfoResponse struct {
	Slot     invitationSlot `json:"slot"`
	Restants int            `json:"restants"`
}

type acceptResponse struct {
	AcceptedCount int `json:"acceptedCount"`
}
