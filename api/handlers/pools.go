package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/openalpha/fundmarket/api/readmodel"
)

// PoolHandler serves pool, NAV and redeem slot queries from the read model
type PoolHandler struct {
	store *readmodel.Store
}

// NewPoolHandler creates a new PoolHandler
func NewPoolHandler(store *readmodel.Store) *PoolHandler {
	return &PoolHandler{store: store}
}

// RegisterRoutes registers pool API routes
func (h *PoolHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/pools", h.GetPools).Methods("GET")
	r.HandleFunc("/v1/pools/{poolId}", h.GetPool).Methods("GET")
	r.HandleFunc("/v1/pools/{poolId}/nav", h.GetNav).Methods("GET")
	r.HandleFunc("/v1/pools/{poolId}/nav/history", h.GetNavHistory).Methods("GET")
	r.HandleFunc("/v1/pools/{poolId}/slots", h.GetSlots).Methods("GET")
	r.HandleFunc("/v1/slots/{slotId}", h.GetSlot).Methods("GET")
}

// GetPools returns all pools, paginated by offset and limit
func (h *PoolHandler) GetPools(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	pools := h.store.Pools()
	total := len(pools)
	if offset < 0 || offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools[offset:end],
		"total": total,
	})
}

// GetPool returns a single pool
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolId"]

	pool, ok := h.store.Pool(poolID)
	if !ok {
		writeError(w, http.StatusNotFound, "pool_not_found", "Pool "+poolID+" not found")
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

// GetNav returns the subscribe NAV in force at ?at= (unix seconds, default now)
func (h *PoolHandler) GetNav(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolId"]

	at := time.Now().Unix()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_timestamp", "at must be a unix timestamp")
			return
		}
		at = parsed
	}

	cp, ok := h.store.NavAt(poolID, at)
	if !ok {
		writeError(w, http.StatusNotFound, "pool_not_found", "Pool "+poolID+" not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id":   poolID,
		"at":        at,
		"nav":       cp.Nav.String(),
		"timestamp": cp.Timestamp,
	})
}

// GetNavHistory returns checkpoints in [from, to]; a zero bound is open
func (h *PoolHandler) GetNavHistory(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolId"]
	if _, ok := h.store.Pool(poolID); !ok {
		writeError(w, http.StatusNotFound, "pool_not_found", "Pool "+poolID+" not found")
		return
	}

	from, _ := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	to, _ := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)

	history := make([]map[string]interface{}, 0)
	for _, cp := range h.store.NavHistory(poolID) {
		if from > 0 && cp.Timestamp < from {
			continue
		}
		if to > 0 && cp.Timestamp > to {
			break
		}
		history = append(history, map[string]interface{}{
			"nav":       cp.Nav.String(),
			"timestamp": cp.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id": poolID,
		"history": history,
	})
}

// GetSlots returns a pool's redeem slots in opening order
func (h *PoolHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["poolId"]
	if _, ok := h.store.Pool(poolID); !ok {
		writeError(w, http.StatusNotFound, "pool_not_found", "Pool "+poolID+" not found")
		return
	}

	status := r.URL.Query().Get("status")
	slots := make([]readmodel.SlotView, 0)
	for _, slot := range h.store.Slots(poolID) {
		if status != "" && slot.Status != status {
			continue
		}
		slots = append(slots, slot)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id": poolID,
		"slots":   slots,
	})
}

// GetSlot returns a single redeem slot
func (h *PoolHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	slot, ok := h.store.Slot(slotID)
	if !ok {
		writeError(w, http.StatusNotFound, "slot_not_found", "Slot "+slotID+" not found")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
