package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/moneyhive-bank/internal/auth"
	"github.com/hongminglow/moneyhive-bank/internal/bank"
	"github.com/hongminglow/moneyhive-bank/internal/http/respond"
	"github.com/hongminglow/moneyhive-bank/internal/middleware"
	"github.com/hongminglow/moneyhive-bank/internal/models/dto"
)

// AuthHandler owns the JSON register/login/me endpoints.
type AuthHandler struct {
	bank   *bank.Service
	tokens *auth.TokenManager
	log    zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *bank.Service, tokens *auth.TokenManager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{bank: svc, tokens: tokens, log: log.With().Str("pkg", "handlers").Logger()}
}

// Register attaches auth routes to the API router.
func (h *AuthHandler) Register(api *mux.Router) {
	api.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	api.Handle("/me", middleware.RequireToken(h.tokens, http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.bank.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, bank.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, bank.ErrDuplicateUsername):
			respond.Error(w, http.StatusConflict, bank.MsgDuplicateUsername)
		default:
			writeFailure(w, h.log, "register", err)
		}
		return
	}
	respond.JSON(w, http.StatusCreated, bank.MsgRegistered, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.bank.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, bank.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, bank.MsgInvalidCredentials)
			return
		}
		writeFailure(w, h.log, "login", err)
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.log.Error().Err(err).Msg("login: generate token")
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	user, err := h.bank.Lookup(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, bank.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		writeFailure(w, h.log, "me", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

// writeFailure reports outages as 503 and anything else as a generic 500.
func writeFailure(w http.ResponseWriter, log zerolog.Logger, op string, err error) {
	if errors.Is(err, bank.ErrServiceUnavailable) {
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	log.Error().Err(err).Str("op", op).Msg("request failed")
	respond.Error(w, http.StatusInternalServerError, "internal error")
}
