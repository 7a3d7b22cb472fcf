package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeSlotIDRequired     = "slot_id_required"
	codeTerrainIDRequired  = "terrain_id_required"
	codeInvalidStartAt     = "invalid_start_at"
	codeInvalidDuration    = "invalid_duration"
	codeInvalidCapacity    = "invalid_capacity"
	codeInvalidID          = "invalid_id"
	codeSlotNotFound       = "slot_not_found"
	codeSlotNotOpen        = "slot_not_open"
	codeSlotFull           = "slot_full"
	codeInvitationNotFound = "invitation_not_found"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeTooManyRequests    = "too_many_requests"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
