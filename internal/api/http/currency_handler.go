package http

import (
	"net/http"

	"rental-booking-backend/internal/service"

	"github.com/gorilla/mux"
)

type currencyHandler struct {
	svc service.CurrencyService
}

func (h *currencyHandler) exchangeInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.ExchangeInfo(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exchangeInfoResponse{
		FromCurrency: info.FromCurrency,
		ToCurrency:   info.ToCurrency,
		ExchangeRate: info.ExchangeRate.String(),
	})
}
