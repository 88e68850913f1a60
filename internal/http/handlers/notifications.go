package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/moneyhive-bank/internal/bank"
	"github.com/hongminglow/moneyhive-bank/internal/http/respond"
	"github.com/hongminglow/moneyhive-bank/internal/models"
	"github.com/hongminglow/moneyhive-bank/internal/models/dto"
)

// FeedHandler serves the notification feed and the customer-service form over JSON.
type FeedHandler struct {
	bank         *bank.Service
	defaultLimit int64
	log          zerolog.Logger
}

// NewFeedHandler constructs the handler. defaultLimit applies when the
// request carries no limit; 0 means unbounded.
func NewFeedHandler(svc *bank.Service, defaultLimit int64, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{bank: svc, defaultLimit: defaultLimit, log: log.With().Str("pkg", "handlers").Logger()}
}

// Register attaches the feed routes to the API router.
func (h *FeedHandler) Register(api *mux.Router) {
	api.HandleFunc("/notifications", h.handleNotifications).Methods(http.MethodGet)
	api.HandleFunc("/support", h.handleSupport).Methods(http.MethodPost)
}

func (h *FeedHandler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	notes, err := h.bank.CollectNotifications(r.Context(), limit)
	if err != nil {
		writeFailure(w, h.log, "notifications", err)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	respond.JSON(w, http.StatusOK, "ok", notes)
}

func (h *FeedHandler) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req dto.SupportRequest
	// Malformed bodies are acknowledged like any other submission.
	_ = json.NewDecoder(r.Body).Decode(&req)
	ack := h.bank.ContactSupport(r.Context(), bank.SupportMessage{Name: req.Name, Email: req.Email, Message: req.Message})
	respond.JSON(w, http.StatusOK, ack, nil)
}
