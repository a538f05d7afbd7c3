package http

import (
	"context"
	"net/http"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/service"
)

type bookingHandler struct {
	svc service.BookingService
}

func (h *bookingHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itemID, err := queryInt64(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.BookingFilter{ItemID: itemID, UserID: userID}
	if raw := q.Get("status"); raw != "" {
		if filter.Status, err = domain.ParseBookingStatus(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	currency := q.Get("currency")
	bookings, err := h.svc.ListBookings(r.Context(), filter, currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i], currency))
	}
	writeJSON(w, http.StatusOK, resp)
}

// create charges in ?currency when given. The stored price is the converted amount.
func (h *bookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var body bookingRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.svc.CreateBooking(r.Context(), req, r.URL.Query().Get("currency"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/bookings/"+itoa(b.ID))
	writeJSON(w, http.StatusCreated, toBookingResponse(b, ""))
}

func (h *bookingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	currency := r.URL.Query().Get("currency")
	b, err := h.svc.GetBooking(r.Context(), id, currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b, currency))
}

func (h *bookingHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body bookingUpdateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	upd, err := body.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.svc.UpdateBooking(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b, ""))
}

func (h *bookingHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteBooking(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *bookingHandler) transition(fn func(ctx context.Context, id int64) (*domain.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, err := fn(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b, ""))
	}
}
