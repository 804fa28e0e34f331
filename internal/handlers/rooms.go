package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/api/middleware"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/metrics"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

const joinCodeLength = 6

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// JoinRoomRequest represents the join-by-code request.
type JoinRoomRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// RoomListResponse represents the caller's rooms.
type RoomListResponse struct {
	Rooms []models.Room `json:"rooms"`
}

// RoomMembersResponse represents a room roster.
type RoomMembersResponse struct {
	Room    models.Room   `json:"room"`
	Members []models.User `json:"members"`
}

// newJoinCode derives a short uppercase code from ULID entropy. The ULID
// alphabet is Crockford base32, so codes never contain I, L, O or U.
func newJoinCode() string {
	id := ulid.Make().String()
	return id[len(id)-joinCodeLength:]
}

// CreateRoom handles room creation. Teachers only; enforced by the router.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	teacher := middleware.GetUserFromContext(r.Context())
	if teacher == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateRoomRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// Retry on the rare join-code collision
	var room *models.Room
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		room, err = h.db.CreateRoom(r.Context(), strings.TrimSpace(req.Name), newJoinCode(), teacher.ID)
		if err == nil {
			break
		}
	}
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	metrics.RoomsCreated.Inc()
	h.JSON(w, http.StatusCreated, room)
}

// JoinRoom enrolls the caller in the room matching the code.
// Re-joining is a no-op success.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req JoinRoomRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	room, err := h.db.GetRoomByJoinCode(r.Context(), strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "no room with that code")
		return
	}
	if room.TeacherID == user.ID {
		h.Error(w, http.StatusBadRequest, "you already teach this room")
		return
	}

	if err := h.db.AddRoomMember(r.Context(), room.ID, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	metrics.RoomsJoined.Inc()
	h.JSON(w, http.StatusOK, room)
}

// ListRooms returns the rooms the caller teaches or is enrolled in.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rooms, err := h.db.ListRoomsForUser(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: rooms})
}

// RoomMembers returns a room's roster. Members and the teacher only.
func (h *Handler) RoomMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	roomID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid room ID format")
		return
	}

	room, err := h.db.GetRoomByID(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if room == nil {
		h.Error(w, http.StatusNotFound, "room not found")
		return
	}

	member, err := h.db.IsRoomMember(r.Context(), roomID, user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		h.Error(w, http.StatusForbidden, "not a member of this room")
		return
	}

	members, err := h.db.ListRoomMembers(r.Context(), roomID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, RoomMembersResponse{Room: *room, Members: members})
}
