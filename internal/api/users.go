package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"swapwear/internal/model"
	"swapwear/internal/store"
)

// UsersHandler handles user endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type setPointsRequest struct {
	Points int `json:"points"`
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, CurrentUser(r.Context()))
}

// List handles GET /api/users (admin only).
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id} (admin only).
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// SetPoints handles PUT /api/users/{id}/points (admin only).
func (h *UsersHandler) SetPoints(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetUserPoints(r.Context(), h.DB, actor, id, req.Points); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("user points set", "user", id, "points", req.Points, "by", actor.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "points updated"})
}

// Delete handles DELETE /api/users/{id} (admin only). Removes the user's
// listings and swap requests along with the account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, actor, id); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("user deleted", "user", id, "by", actor.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
