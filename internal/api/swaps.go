package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"swapwear/internal/model"
	"swapwear/internal/store"
)

// SwapsHandler handles swap request endpoints.
type SwapsHandler struct {
	DB *sql.DB
}

type createSwapRequest struct {
	RequestedItemID int64  `json:"requested_item_id"`
	OfferedItemID   *int64 `json:"offered_item_id"`
}

// List handles GET /api/swaps.
func (h *SwapsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	direction := r.URL.Query().Get("direction")
	if direction != "" && direction != "incoming" && direction != "outgoing" {
		jsonError(w, http.StatusBadRequest, "direction must be incoming or outgoing")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != model.SwapStatusPending &&
		status != model.SwapStatusCompleted && status != model.SwapStatusDeclined {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	swaps, err := store.ListSwaps(r.Context(), h.DB, user, direction, status)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.SwapRequest{}
	}
	jsonResponse(w, http.StatusOK, swaps)
}

// Create handles POST /api/swaps. An offered item makes the request an
// item-for-item exchange; without one it is a point swap.
func (h *SwapsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var req createSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RequestedItemID == 0 {
		jsonError(w, http.StatusBadRequest, "requested_item_id required")
		return
	}

	var swap *model.SwapRequest
	var err error
	if req.OfferedItemID != nil {
		swap, err = store.RequestExchange(r.Context(), h.DB, user, req.RequestedItemID, *req.OfferedItemID)
	} else {
		swap, err = store.RequestPointSwap(r.Context(), h.DB, user, req.RequestedItemID)
	}
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("swap requested", "swap", swap.ID, "kind", swap.Kind, "requester", user.Username)
	jsonResponse(w, http.StatusCreated, swap)
}

// Get handles GET /api/swaps/{id}. Only the requester or the requested
// item's owner may view a swap.
func (h *SwapsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get swap")
		return
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return
	}

	if swap.RequesterID != user.ID && !user.IsAdmin {
		item, err := store.GetItem(r.Context(), h.DB, swap.RequestedItemID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to get swap")
			return
		}
		if item == nil || item.OwnerID != user.ID {
			jsonError(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	jsonResponse(w, http.StatusOK, swap)
}

// Accept handles POST /api/swaps/{id}/accept.
func (h *SwapsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := store.AcceptSwap(r.Context(), h.DB, user, id)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("swap accepted", "swap", id, "kind", swap.Kind, "by", user.Username)
	jsonResponse(w, http.StatusOK, swap)
}

// Decline handles POST /api/swaps/{id}/decline.
func (h *SwapsHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	if err := store.DeclineSwap(r.Context(), h.DB, user, id); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("swap declined", "swap", id, "by", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap declined"})
}

// Cancel handles POST /api/swaps/{id}/cancel.
func (h *SwapsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	if err := store.CancelSwap(r.Context(), h.DB, user, id); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("swap cancelled", "swap", id, "by", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap cancelled"})
}
