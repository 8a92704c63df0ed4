// Package handler exposes the workflow and exchange operations over HTTP.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/impactility/vc-api/internal/platform/middleware"
	"github.com/impactility/vc-api/internal/workflow/models"
	"github.com/impactility/vc-api/internal/workflow/service"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
	"github.com/impactility/vc-api/pkg/httputil"
)

// Service is the orchestrator surface the handler depends on.
type Service interface {
	CreateWorkflow(ctx context.Context, def models.WorkflowDefinition) (models.WorkflowDefinition, error)
	GetWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error)
	CreateExchange(ctx context.Context, workflowID string) (service.CreateExchangeResult, error)
	GetExchangeState(ctx context.Context, workflowID, exchangeID string) (service.ExchangeStateResult, error)
	ParticipateInExchange(ctx context.Context, workflowID, exchangeID string, presentation *models.VerifiablePresentation) (service.ParticipateResult, error)
	GetExchangeStep(ctx context.Context, workflowID, exchangeID, stepID string) (service.StepResult, error)
	AddIssuanceVP(ctx context.Context, workflowID, exchangeID, stepID string, vp models.VerifiablePresentation) (service.StepResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/workflows", h.HandleCreateWorkflow)
	r.Get("/workflows/{workflowId}", h.HandleGetWorkflow)
	r.Post("/workflows/{workflowId}/exchanges", h.HandleCreateExchange)
	r.Get("/workflows/{workflowId}/exchanges/{exchangeId}", h.HandleGetExchangeState)
	r.Post("/workflows/{workflowId}/exchanges/{exchangeId}", h.HandleParticipate)
	r.Get("/workflows/{workflowId}/exchanges/{exchangeId}/steps/{stepId}", h.HandleGetExchangeStep)
	r.Put("/workflows/{workflowId}/exchanges/{exchangeId}/steps/{stepId}/vp", h.HandleAddIssuanceVP)
}

// CreateWorkflowRequest wraps the workflow definition under a config key, the
// shape issuer tooling posts.
type CreateWorkflowRequest struct {
	Config models.WorkflowDefinition `json:"config"`
}

// Validate implements httputil.Validatable.
func (r *CreateWorkflowRequest) Validate() error {
	if len(r.Config.Steps) == 0 {
		return dErrors.New(dErrors.CodeValidation, "config with at least one step is required")
	}
	return nil
}

// HandleCreateWorkflow implements POST /workflows.
// Input: { "config": { "id": "...", "steps": {...}, "initialStep": "..." } }
// Output: 201 with the stored definition.
func (h *Handler) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	req, ok := httputil.DecodeAndPrepare[CreateWorkflowRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateWorkflow(ctx, req.Config)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create workflow",
			"error", err,
			"workflow_id", req.Config.WorkflowID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleGetWorkflow implements GET /workflows/{workflowId}.
func (h *Handler) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflowID := chi.URLParam(r, "workflowId")

	def, err := h.service.GetWorkflow(ctx, workflowID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, def)
}

// HandleCreateExchange implements POST /workflows/{workflowId}/exchanges.
// Output: 201 { "exchangeId": "<exchange URL>", "step": "...", "state": "pending" }
func (h *Handler) HandleCreateExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflowID := chi.URLParam(r, "workflowId")

	result, err := h.service.CreateExchange(ctx, workflowID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create exchange",
			"error", err,
			"workflow_id", workflowID,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGetExchangeState implements GET /workflows/{workflowId}/exchanges/{exchangeId}.
func (h *Handler) HandleGetExchangeState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflowID := chi.URLParam(r, "workflowId")
	exchangeID := chi.URLParam(r, "exchangeId")

	state, err := h.service.GetExchangeState(ctx, workflowID, exchangeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

// participationErrors is the body returned when a submission failed
// verification. The submission was still recorded.
type participationErrors struct {
	Errors []string `json:"errors"`
}

// HandleParticipate implements POST /workflows/{workflowId}/exchanges/{exchangeId}.
//
// An empty body probes the exchange: 200 with whatever the current step
// expects, no state change. A verifiable presentation body is processed by
// the current step: 202 while the exchange expects further input, 200 when
// it completed, 400 with { "errors": [...] } when verification failed.
func (h *Handler) HandleParticipate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	workflowID := chi.URLParam(r, "workflowId")
	exchangeID := chi.URLParam(r, "exchangeId")

	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
		return
	}

	var presentation *models.VerifiablePresentation
	if len(bytes.TrimSpace(body)) > 0 {
		var vp models.VerifiablePresentation
		if err := json.Unmarshal(body, &vp); err != nil {
			h.logger.WarnContext(ctx, "failed to decode presentation",
				"error", err,
				"request_id", requestID,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
			return
		}
		presentation = &vp
	}

	result, err := h.service.ParticipateInExchange(ctx, workflowID, exchangeID, presentation)
	if err != nil {
		if len(result.Errors) > 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, participationErrors{Errors: result.Errors})
			return
		}
		h.logger.ErrorContext(ctx, "failed to participate in exchange",
			"error", err,
			"workflow_id", workflowID,
			"exchange_id", exchangeID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if presentation != nil && result.Processing {
		status = http.StatusAccepted
	}
	httputil.WriteJSON(w, status, result.Response)
}

// HandleGetExchangeStep implements GET /workflows/{workflowId}/exchanges/{exchangeId}/steps/{stepId}.
func (h *Handler) HandleGetExchangeStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workflowID := chi.URLParam(r, "workflowId")
	exchangeID := chi.URLParam(r, "exchangeId")
	stepID := chi.URLParam(r, "stepId")

	result, err := h.service.GetExchangeStep(ctx, workflowID, exchangeID, stepID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAddIssuanceVP implements PUT /workflows/{workflowId}/exchanges/{exchangeId}/steps/{stepId}/vp.
// The body is the issued verifiable presentation produced by the reviewer.
func (h *Handler) HandleAddIssuanceVP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	workflowID := chi.URLParam(r, "workflowId")
	exchangeID := chi.URLParam(r, "exchangeId")
	stepID := chi.URLParam(r, "stepId")

	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	var vp models.VerifiablePresentation
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		h.logger.WarnContext(ctx, "failed to decode issued presentation",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.service.AddIssuanceVP(ctx, workflowID, exchangeID, stepID, vp)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to attach issued presentation",
			"error", err,
			"workflow_id", workflowID,
			"exchange_id", exchangeID,
			"step_id", stepID,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
