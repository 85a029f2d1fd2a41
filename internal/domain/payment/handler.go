package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/middleware"
	"github.com/edusdg/tutoria-api/internal/pkg/intasend"
	"github.com/edusdg/tutoria-api/internal/pkg/metrics"
	"github.com/edusdg/tutoria-api/internal/pkg/response"
	"github.com/edusdg/tutoria-api/internal/pkg/validator"
)

const maxWebhookBody = 1 << 20 // 1 MiB

type Handler struct {
	svc           *Service
	webhookSecret string
}

type checkoutRequest struct {
	Credits int64 `json:"credits" validate:"required,gt=0"`
}

func NewHandler(svc *Service, webhookSecret string) *Handler {
	return &Handler{svc: svc, webhookSecret: webhookSecret}
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req checkoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	checkout, err := h.svc.CreateCheckout(r.Context(), accountID, req.Credits)
	if err != nil {
		if errors.Is(err, ErrInvalidPackage) {
			response.BadRequest(w, "invalid credit package")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, checkout)
}

func (h *Handler) Packages(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{"packages": h.svc.Packages()})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.svc.History(r.Context(), accountID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"payments": payments})
}

// Webhook receives IntaSend notifications. It carries no session: the
// only authentication is the signature over the raw body, so it must be
// safe against replays, duplicates and garbage.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.InternalError(w)
		return
	}

	signature := r.Header.Get(intasend.SignatureHeader)
	if signature == "" {
		metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
		response.BadRequest(w, "missing signature")
		return
	}
	if !intasend.VerifyWebhookSignature(body, signature, h.webhookSecret) {
		metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
		log.Warn().Str("ip", r.RemoteAddr).Msg("webhook signature mismatch")
		response.BadRequest(w, "invalid signature")
		return
	}

	event, err := intasend.ParseEvent(body)
	if err != nil {
		metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
		response.BadRequest(w, "malformed payload")
		return
	}

	switch event.Event {
	case intasend.EventPaymentCompleted:
		h.settle(w, r, event)
	case intasend.EventPaymentFailed:
		h.fail(w, r, event)
	default:
		// Unrecognized events are acknowledged without effect.
		response.OK(w, map[string]string{"message": "Event received"})
	}
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, event *intasend.Event) {
	paymentID, err := uuid.Parse(event.Data.APIRef)
	if err != nil {
		metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
		response.BadRequest(w, "missing or malformed api_ref")
		return
	}

	_, err = h.svc.Settle(r.Context(), paymentID, event.Data.ID)
	switch {
	case err == nil:
		metrics.PaymentsSettled.WithLabelValues("settled").Inc()
		response.OK(w, map[string]string{"message": "Payment processed successfully"})
	case errors.Is(err, ErrAlreadySettled):
		metrics.PaymentsSettled.WithLabelValues("duplicate").Inc()
		response.OK(w, map[string]string{"message": "Already processed"})
	case errors.Is(err, ErrTerminalState):
		// Completion for a failed/refunded payment; acknowledged, no credit.
		response.OK(w, map[string]string{"message": "Event received"})
	case errors.Is(err, ErrPaymentNotFound):
		metrics.PaymentsSettled.WithLabelValues("not_found").Inc()
		response.NotFound(w, "payment not found")
	default:
		log.Error().Err(err).Str("payment_id", paymentID.String()).Msg("webhook settlement failed")
		response.InternalError(w)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, event *intasend.Event) {
	paymentID, err := uuid.Parse(event.Data.APIRef)
	if err != nil {
		response.BadRequest(w, "missing or malformed api_ref")
		return
	}

	err = h.svc.MarkFailed(r.Context(), paymentID)
	switch {
	case err == nil, errors.Is(err, ErrTerminalState):
		response.OK(w, map[string]string{"message": "Event received"})
	case errors.Is(err, ErrPaymentNotFound):
		response.NotFound(w, "payment not found")
	default:
		log.Error().Err(err).Str("payment_id", paymentID.String()).Msg("webhook failure handling failed")
		response.InternalError(w)
	}
}

func (h *Handler) AdminRefund(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	if err := h.svc.Refund(r.Context(), paymentID); err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			response.NotFound(w, "payment not found")
		case errors.Is(err, ErrNotRefundable):
			response.Conflict(w, "only completed payments can be refunded")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": string(StatusRefunded)})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Provider callback; signature-verified, no session.
	r.Post("/webhook", h.Webhook)
	r.Get("/packages", h.Packages)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/checkout", h.CreateCheckout)
		r.Get("/history", h.History)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole("admin"))
		r.Post("/{id}/refund", h.AdminRefund)
	})

	return r
}
