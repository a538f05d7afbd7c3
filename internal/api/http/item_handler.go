package http

import (
	"net/http"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/service"
)

type itemHandler struct {
	svc service.ItemService
}

func (h *itemHandler) list(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	items, err := h.svc.ListItems(r.Context(), currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]itemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResponse(&items[i], currency))
	}
	writeJSON(w, http.StatusOK, resp)
}

// create reads prices in ?currency when given; the stored item is in the base currency.
func (h *itemHandler) create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item := &domain.Item{
		Name:            req.Name,
		Category:        req.Category,
		BaseDailyPrice:  req.BaseDailyPrice,
		SecurityDeposit: req.SecurityDeposit,
		TotalStock:      req.TotalStock,
		Active:          req.active(),
	}
	if err := h.svc.CreateItem(r.Context(), item, r.URL.Query().Get("currency")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item, ""))
}

func (h *itemHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	currency := r.URL.Query().Get("currency")
	item, err := h.svc.GetItem(r.Context(), id, currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item, currency))
}

func (h *itemHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), id, domain.ItemChanges{
		Name:            req.Name,
		Category:        req.Category,
		BaseDailyPrice:  req.BaseDailyPrice,
		SecurityDeposit: req.SecurityDeposit,
		TotalStock:      req.TotalStock,
		Active:          req.active(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item, ""))
}

func (h *itemHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
