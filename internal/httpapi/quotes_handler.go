package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/quote"
)

// handleCreateQuote processes POST /api/v1/quotes/requests.
func (a *API) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quote.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		logger.FromContext(r.Context()).Warn("invalid json payload", slog.String("error", err.Error()))
		respondError(w, r, http.StatusBadRequest, CodeInvalidArguments, "Invalid JSON payload: "+err.Error(), nil)
		return
	}

	resp, err := a.quotes.CreateQuote(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, "Quote request created successfully.", resp)
}

// handleGetQuote processes GET /api/v1/quotes/{id}.
func (a *API) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := a.quotes.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, "Quote retrieved successfully.", q)
}

// handleListQuotes processes GET /api/v1/quotes.
func (a *API) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := a.quotes.ListQuotes(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, "Quotes retrieved successfully.", quotes)
}
