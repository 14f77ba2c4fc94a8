// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stay_offers/internal/app"
	"stay_offers/internal/domain"
	"stay_offers/internal/offers"
)

const maxBody = 1 << 20

type Handlers struct {
	Conv   *app.ConversationService
	Offers *app.OfferService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/offers", h.generateOffers)
		r.Post("/calls/{callID}/turns", h.handleTurn)
		r.Post("/calls/{callID}/offers", h.generateForCall)
		r.Get("/calls/{callID}", h.getCall)
		r.Delete("/calls/{callID}", h.endCall)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var ve *offers.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid request", Status: http.StatusBadRequest, Detail: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidRequest):
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, domain.ErrIntentNotReady):
		writeProblem(w, http.StatusConflict, "Intent not confirmed", "the stay details have not been confirmed for this call yet")
	case errors.Is(err, domain.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "call not found")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response body")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// decodeBody reads a JSON body into dst; an empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handlers) handleTurn(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}
	if err := decodeBody(r, &payload); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "body must be a JSON object of slot values")
		return
	}
	res, err := h.Conv.HandleTurn(r.Context(), chi.URLParam(r, "callID"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type callOffersBody struct {
	PropertyID string         `json:"property_id"`
	Channel    offers.Channel `json:"channel"`
}

func (h *Handlers) generateForCall(w http.ResponseWriter, r *http.Request) {
	var body callOffersBody
	if err := decodeBody(r, &body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	resp, err := h.Offers.GenerateForCall(r.Context(), chi.URLParam(r, "callID"), body.PropertyID, body.Channel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) getCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	in, err := h.Conv.Intent(r.Context(), callID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"call_id": callID, "slots": in})
}

func (h *Handlers) endCall(w http.ResponseWriter, r *http.Request) {
	if err := h.Conv.EndCall(r.Context(), chi.URLParam(r, "callID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) generateOffers(w http.ResponseWriter, r *http.Request) {
	var req offers.StayRequest
	if err := decodeBody(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	resp, err := h.Offers.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
