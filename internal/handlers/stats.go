package handlers

import "net/http"

// StatsResponse represents aggregate platform statistics.
type StatsResponse struct {
	Users    int64 `json:"users"`
	Rooms    int64 `json:"rooms"`
	Messages int64 `json:"messages"`
}

// Stats returns aggregate platform counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.CountUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	rooms, err := h.db.CountRooms(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	messages, err := h.db.CountMessages(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		Users:    users,
		Rooms:    rooms,
		Messages: messages,
	})
}
