// Package httpapi serves the recovery engine over JSON/HTTP with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	goRecover "github.com/MrEthical07/goRecover"
)

// Service is the engine surface the handlers call.
type Service interface {
	SelectChallenge(ctx context.Context, identity string) (string, error)
	VerifyChallengeAnswer(ctx context.Context, identity, question, answer string) (string, error)
	ConsumeResetToken(ctx context.Context, identity, newCredential, token string) error
	ChangeCredential(ctx context.Context, identity, oldSecret, newSecret string) error
	CheckIdentifierAvailable(ctx context.Context, kind, value string) error
}

const maxBodyBytes = 1 << 16

type Handler struct {
	service Service
	logger  *slog.Logger
	timeout time.Duration
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// Register mounts the recovery routes on r.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.RealIP)
	api.Use(ClientIP)
	api.Use(middleware.Recoverer)
	api.Use(middleware.Timeout(h.timeout))

	api.Post("/recovery/question", h.handleSelectChallenge)
	api.Post("/recovery/answer", h.handleVerifyAnswer)
	api.Post("/recovery/reset", h.handleConsumeToken)
	api.Post("/credential/change", h.handleChangeCredential)
	api.Get("/identifiers/{kind}/{value}", h.handleCheckIdentifier)

	r.Mount("/", api)
}

// ClientIP copies the request's remote address into the context for
// per-IP throttling. Run it after middleware.RealIP.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(goRecover.WithClientIP(r.Context(), ip)))
	})
}

type selectChallengeRequest struct {
	Identity string `json:"identity"`
}

type selectChallengeResponse struct {
	Question string `json:"question"`
}

type verifyAnswerRequest struct {
	Identity string `json:"identity"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type verifyAnswerResponse struct {
	Token string `json:"token"`
}

type consumeTokenRequest struct {
	Identity      string `json:"identity"`
	NewCredential string `json:"new_credential"`
	Token         string `json:"token"`
}

type changeCredentialRequest struct {
	Identity      string `json:"identity"`
	OldCredential string `json:"old_credential"`
	NewCredential string `json:"new_credential"`
}

func (h *Handler) handleSelectChallenge(w http.ResponseWriter, r *http.Request) {
	var req selectChallengeRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.service.SelectChallenge(r.Context(), req.Identity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectChallengeResponse{Question: question})
}

func (h *Handler) handleVerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req verifyAnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.service.VerifyChallengeAnswer(r.Context(), req.Identity, req.Question, req.Answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, verifyAnswerResponse{Token: token})
}

func (h *Handler) handleConsumeToken(w http.ResponseWriter, r *http.Request) {
	var req consumeTokenRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ConsumeResetToken(r.Context(), req.Identity, req.NewCredential, req.Token); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleChangeCredential(w http.ResponseWriter, r *http.Request) {
	var req changeCredentialRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ChangeCredential(r.Context(), req.Identity, req.OldCredential, req.NewCredential); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckIdentifier(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	value := chi.URLParam(r, "value")

	if err := h.service.CheckIdentifierAvailable(r.Context(), kind, value); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetReqID(r.Context()),
			"route", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	attrs := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"route", r.URL.Path,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "recovery request failed", attrs...)
	} else {
		h.logger.InfoContext(r.Context(), "recovery request rejected", attrs...)
	}
	writeError(w, status, code, publicMessage(status, err))
}
