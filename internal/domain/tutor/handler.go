package tutor

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edusdg/tutoria-api/internal/middleware"
	"github.com/edusdg/tutoria-api/internal/pkg/response"
	"github.com/edusdg/tutoria-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req AskRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Ask(r.Context(), accountID, req.Question)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"response":          result.Interaction.Response,
		"interaction_id":    result.Interaction.ID,
		"credits_remaining": result.CreditsRemaining,
	})
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ExplainRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.Explain(r.Context(), accountID, req.Topic, req.Level, req.Context)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"explanation":       result.Interaction.Response,
		"topic":             req.Topic,
		"level":             req.Level,
		"credits_remaining": result.CreditsRemaining,
	})
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req QuizRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.svc.GenerateQuiz(r.Context(), accountID, req.Topic, req.Difficulty, req.NumQuestions)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"quiz_content":      result.Interaction.Response,
		"topic":             req.Topic,
		"credits_remaining": result.CreditsRemaining,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	interactions, err := h.svc.History(r.Context(), accountID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"interactions": interactions})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		response.BadRequest(w, "request input is empty or malformed")
	case errors.Is(err, ErrInsufficientCredits):
		balance, berr := h.svc.credits.GetBalance(r.Context(), middleware.GetAccountID(r.Context()))
		if berr == nil {
			response.ErrorWithDetails(w, http.StatusPaymentRequired, "INSUFFICIENT_CREDITS",
				"Insufficient credits. Please purchase more credits.",
				map[string]string{"credits_remaining": strconv.FormatInt(balance, 10)})
			return
		}
		response.PaymentRequired(w, "Insufficient credits. Please purchase more credits.")
	case errors.Is(err, ErrAIServiceFailed):
		response.BadGateway(w, "AI service error. Credits refunded.")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/tutor", h.Ask)
	r.Post("/explain", h.Explain)
	r.Post("/quiz", h.GenerateQuiz)
	r.Get("/interactions", h.History)
	return r
}
