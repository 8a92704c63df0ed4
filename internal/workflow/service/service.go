// Package service implements the workflow orchestrator: the only component
// that loads and persists workflow and exchange aggregates, advances
// exchanges through their step graphs and dispatches step completion
// callbacks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/impactility/vc-api/internal/platform/metrics"
	"github.com/impactility/vc-api/internal/workflow/callback"
	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
	"github.com/impactility/vc-api/internal/workflow/store"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

// Dispatcher sends step completion callbacks without blocking the caller.
type Dispatcher interface {
	DispatchAsync(targets []models.CallbackConfiguration, payload callback.Payload)
}

// Service coordinates workflow and exchange persistence, step advancement
// and callback dispatch. It is stateless; every operation reconstructs the
// exchange from the store and writes it back.
type Service struct {
	store      store.Store
	verifier   exchange.SubmissionVerifier
	dispatcher Dispatcher
	baseURL    string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics configures Prometheus metrics for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New creates a workflow service. baseURL is the externally reachable root
// used to construct interaction service endpoints and exchange URLs.
func New(st store.Store, verifier exchange.SubmissionVerifier, dispatcher Dispatcher, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:      st,
		verifier:   verifier,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		logger:     slog.Default(),
		tracer:     otel.Tracer("vc-api/workflow"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateWorkflow validates and persists a workflow definition. A missing id
// is generated; an existing id is a conflict.
func (s *Service) CreateWorkflow(ctx context.Context, def models.WorkflowDefinition) (models.WorkflowDefinition, error) {
	if def.WorkflowID == "" {
		def.WorkflowID = uuid.NewString()
	}
	if err := def.Validate(); err != nil {
		return models.WorkflowDefinition{}, err
	}

	if err := s.store.InsertWorkflow(ctx, def); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.WorkflowDefinition{}, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("workflowId='%s' already exists", def.WorkflowID))
		}
		return models.WorkflowDefinition{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist workflow")
	}

	if s.metrics != nil {
		s.metrics.WorkflowsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "workflow created", "workflow_id", def.WorkflowID)
	return def, nil
}

// GetWorkflow returns a stored workflow definition.
func (s *Service) GetWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error) {
	def, err := s.store.FindWorkflow(ctx, workflowID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.WorkflowDefinition{}, dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("workflowId='%s' does not exist", workflowID))
		}
		return models.WorkflowDefinition{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load workflow")
	}
	return def, nil
}

// CreateExchangeResult is the outcome of starting a new exchange.
type CreateExchangeResult struct {
	// ExchangeID is the fully qualified exchange URL the holder interacts
	// with.
	ExchangeID string               `json:"exchangeId"`
	Step       string               `json:"step"`
	State      models.ExchangeState `json:"state"`
}

// CreateExchange instantiates a new exchange rooted at the workflow's
// initial step and persists it.
func (s *Service) CreateExchange(ctx context.Context, workflowID string) (CreateExchangeResult, error) {
	def, err := s.GetWorkflow(ctx, workflowID)
	if err != nil {
		return CreateExchangeResult{}, err
	}

	initialStep, ok := def.InitialStepDefinition()
	if !ok {
		return CreateExchangeResult{}, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("workflowId='%s' has no initial step definition", workflowID))
	}

	ex := exchange.New(workflowID, initialStep, def.InitialStep, s.baseURL)
	if err := s.store.InsertExchange(ctx, ex); err != nil {
		return CreateExchangeResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist exchange")
	}

	if s.metrics != nil {
		s.metrics.ExchangesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "exchange created",
		"workflow_id", workflowID,
		"exchange_id", ex.ExchangeID,
	)

	return CreateExchangeResult{
		ExchangeID: s.exchangeURL(workflowID, ex.ExchangeID),
		Step:       def.InitialStep,
		State:      ex.State,
	}, nil
}

// ExchangeStateResult is the read-only projection of an exchange's progress.
type ExchangeStateResult struct {
	ExchangeID string               `json:"exchangeId"`
	Step       string               `json:"step"`
	State      models.ExchangeState `json:"state"`
}

// GetExchangeState returns the exchange's current step and state.
func (s *Service) GetExchangeState(ctx context.Context, workflowID, exchangeID string) (ExchangeStateResult, error) {
	ex, err := s.findExchange(ctx, workflowID, exchangeID)
	if err != nil {
		return ExchangeStateResult{}, err
	}
	return ExchangeStateResult{
		ExchangeID: exchangeID,
		Step:       ex.CurrentStep().StepID,
		State:      ex.State,
	}, nil
}

// ParticipateResult is the outcome of a participation call. Processing
// reports whether the exchange still expects holder input, which the
// transport layer maps to a 202.
type ParticipateResult struct {
	Response   models.ExchangeResponse
	Errors     []string
	Processing bool
}

// ParticipateInExchange drives one holder interaction. A nil presentation
// is a probe: it returns what the exchange currently expects without any
// state change and is safe to retry. A submission is routed to the current
// step, the mutated exchange is persisted, and step callbacks fire only
// when processing produced no errors. Submissions that failed verification
// are persisted for audit and surfaced as a bad request.
func (s *Service) ParticipateInExchange(ctx context.Context, workflowID, exchangeID string, presentation *models.VerifiablePresentation) (ParticipateResult, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.participate",
		trace.WithAttributes(
			attribute.String("workflow.id", workflowID),
			attribute.String("exchange.id", exchangeID),
		))
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	if s.metrics != nil {
		timer := time.Now()
		defer func() {
			s.metrics.ParticipateLatency.Observe(time.Since(timer).Seconds())
		}()
	}

	ex, err := s.findExchange(ctx, workflowID, exchangeID)
	if err != nil {
		spanErr = err
		return ParticipateResult{}, err
	}

	// https://w3c-ccg.github.io/vc-api/#participate-in-an-exchange
	// "Posting an empty body will start the exchange or return what the
	// exchange is expecting to complete the next step."
	if presentation == nil {
		return ParticipateResult{
			Response:   ex.Response(),
			Processing: ex.State != models.ExchangeStateCompleted,
		}, nil
	}

	def, err := s.GetWorkflow(ctx, workflowID)
	if err != nil {
		spanErr = err
		return ParticipateResult{}, err
	}

	currentStepID := ex.CurrentStep().StepID
	var nextStep *models.StepDefinition
	var nextStepID string
	if next, id, ok := def.NextStep(currentStepID); ok {
		nextStep = &next
		nextStepID = id
	}

	outcome, err := ex.Participate(ctx, *presentation, s.verifier, nextStep, nextStepID, s.baseURL)
	if err != nil {
		spanErr = err
		if s.metrics != nil {
			s.metrics.Submissions.WithLabelValues("rejected").Inc()
		}
		return ParticipateResult{}, err
	}

	// The step records failed submissions too; persist before deciding the
	// response so the audit trail survives verification failures.
	if err := s.store.SaveExchange(ctx, ex); err != nil {
		spanErr = err
		if errors.Is(err, store.ErrConflict) {
			return ParticipateResult{}, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("exchangeId='%s' was modified concurrently", exchangeID))
		}
		return ParticipateResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist exchange")
	}

	if len(outcome.Errors) > 0 {
		if s.metrics != nil {
			s.metrics.Submissions.WithLabelValues("verification_failed").Inc()
		}
		spanErr = dErrors.New(dErrors.CodeBadRequest, "presentation verification failed")
		return ParticipateResult{Errors: outcome.Errors}, spanErr
	}

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("accepted").Inc()
		if ex.State == models.ExchangeStateCompleted {
			s.metrics.ExchangesCompleted.Inc()
		}
	}

	// Callbacks belong to the step that just processed the submission, not
	// the freshly hydrated one.
	completedStep, err := ex.Step(currentStepID)
	if err == nil && len(completedStep.Callback) > 0 {
		s.dispatcher.DispatchAsync(completedStep.Callback, callback.PayloadFromStep(ex.ExchangeID, completedStep))
	}

	return ParticipateResult{
		Response:   outcome.Response,
		Processing: ex.State != models.ExchangeStateCompleted,
	}, nil
}

// StepResult is the read-only projection of one exchange step.
type StepResult struct {
	ExchangeID   string                  `json:"exchangeId"`
	StepID       string                  `json:"stepId"`
	Step         exchange.Step           `json:"step"`
	StepResponse models.ExchangeResponse `json:"stepResponse"`
}

// GetExchangeStep returns a step and its computed response. An unknown step
// id is a distinct not-found, not an empty result.
func (s *Service) GetExchangeStep(ctx context.Context, workflowID, exchangeID, stepID string) (StepResult, error) {
	ex, err := s.findExchange(ctx, workflowID, exchangeID)
	if err != nil {
		return StepResult{}, err
	}
	step, err := ex.Step(stepID)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{
		ExchangeID:   exchangeID,
		StepID:       stepID,
		Step:         *step,
		StepResponse: step.Response(),
	}, nil
}

// AddIssuanceVP attaches the reviewed, issued presentation to an issuance
// step. This is the external reviewer action that lets the holder's polling
// on the redirect URL resolve to the issued credential.
func (s *Service) AddIssuanceVP(ctx context.Context, workflowID, exchangeID, stepID string, vp models.VerifiablePresentation) (StepResult, error) {
	ex, err := s.findExchange(ctx, workflowID, exchangeID)
	if err != nil {
		return StepResult{}, err
	}
	step, err := ex.Step(stepID)
	if err != nil {
		return StepResult{}, err
	}
	if err := step.AttachIssuedVP(vp); err != nil {
		return StepResult{}, err
	}

	if err := s.store.SaveExchange(ctx, ex); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return StepResult{}, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("exchangeId='%s' was modified concurrently", exchangeID))
		}
		return StepResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist exchange")
	}

	s.logger.InfoContext(ctx, "issued presentation attached",
		"workflow_id", workflowID,
		"exchange_id", exchangeID,
		"step_id", stepID,
	)

	return StepResult{
		ExchangeID:   exchangeID,
		StepID:       stepID,
		Step:         *step,
		StepResponse: step.Response(),
	}, nil
}

func (s *Service) findExchange(ctx context.Context, workflowID, exchangeID string) (*exchange.Exchange, error) {
	ex, err := s.store.FindExchange(ctx, workflowID, exchangeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("exchangeId='%s' does not exist", exchangeID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load exchange")
	}
	return ex, nil
}

func (s *Service) exchangeURL(workflowID, exchangeID string) string {
	return fmt.Sprintf("%s/workflows/%s/exchanges/%s", s.baseURL, workflowID, exchangeID)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
