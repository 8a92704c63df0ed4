package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,SubmissionVerifier,Dispatcher

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/impactility/vc-api/internal/workflow/callback"
	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
	"github.com/impactility/vc-api/internal/workflow/service/mocks"
	"github.com/impactility/vc-api/internal/workflow/store"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

const testBaseURL = "https://vc-api.example.com"

// =============================================================================
// Workflow Service Test Suite
// =============================================================================
// Justification for unit tests: The service owns the load-advance-persist
// cycle of exchanges. Tests verify persistence ordering (failed submissions
// are still saved), callback gating (no callbacks on verification errors),
// probe idempotency, and the error taxonomy surfaced to the transport layer.

type ServiceSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockStore      *mocks.MockStore
	mockVerifier   *mocks.MockSubmissionVerifier
	mockDispatcher *mocks.MockDispatcher
	service        *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockVerifier = mocks.NewMockSubmissionVerifier(s.ctrl)
	s.mockDispatcher = mocks.NewMockDispatcher(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.mockStore, s.mockVerifier, s.mockDispatcher, testBaseURL, WithLogger(logger))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// twoStepWorkflow defines a query step that advances to a terminal issuance
// step, with a callback on the query step.
func twoStepWorkflow(id string) models.WorkflowDefinition {
	return models.WorkflowDefinition{
		WorkflowID:  id,
		InitialStep: "presentation",
		Steps: map[string]models.StepDefinition{
			"presentation": {
				PresentationRequest: &models.PresentationRequestSpec{
					Query: []models.VpRequestQuery{{Type: models.QueryTypeDIDAuth}},
					InteractServices: []models.InteractServiceDefinition{
						{Type: models.InteractServiceUnmediatedPresentation},
					},
				},
				NextStep: "issuance",
				Callback: []models.CallbackConfiguration{{URL: "https://issuer.example.com/hook"}},
			},
			"issuance": {},
		},
	}
}

// singleStepWorkflow defines one terminal query step.
func singleStepWorkflow(id string) models.WorkflowDefinition {
	return models.WorkflowDefinition{
		WorkflowID:  id,
		InitialStep: "didauth",
		Steps: map[string]models.StepDefinition{
			"didauth": {
				PresentationRequest: &models.PresentationRequestSpec{
					Query: []models.VpRequestQuery{{Type: models.QueryTypeDIDAuth}},
					InteractServices: []models.InteractServiceDefinition{
						{Type: models.InteractServiceUnmediatedPresentation},
					},
				},
			},
		},
	}
}

func holderVP(holder string) models.VerifiablePresentation {
	return models.VerifiablePresentation{
		Context: []json.RawMessage{json.RawMessage(`"https://www.w3.org/2018/credentials/v1"`)},
		Type:    []string{"VerifiablePresentation"},
		Holder:  holder,
	}
}

func newExchangeFor(def models.WorkflowDefinition) *exchange.Exchange {
	initial, _ := def.InitialStepDefinition()
	return exchange.New(def.WorkflowID, initial, def.InitialStep, testBaseURL)
}

// =============================================================================
// CreateWorkflow Tests
// =============================================================================

func (s *ServiceSuite) TestCreateWorkflow() {
	ctx := context.Background()

	s.Run("persists a valid definition", func() {
		def := twoStepWorkflow("wf-1")
		s.mockStore.EXPECT().InsertWorkflow(ctx, def).Return(nil)

		created, err := s.service.CreateWorkflow(ctx, def)
		s.NoError(err)
		s.Equal("wf-1", created.WorkflowID)
	})

	s.Run("generates an id when none is supplied", func() {
		def := twoStepWorkflow("")
		var inserted models.WorkflowDefinition
		s.mockStore.EXPECT().
			InsertWorkflow(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, d models.WorkflowDefinition) error {
				inserted = d
				return nil
			})

		created, err := s.service.CreateWorkflow(ctx, def)
		s.NoError(err)
		s.NotEmpty(created.WorkflowID)
		s.Equal(created.WorkflowID, inserted.WorkflowID)
	})

	s.Run("duplicate id is a conflict", func() {
		def := twoStepWorkflow("wf-dup")
		s.mockStore.EXPECT().InsertWorkflow(ctx, def).Return(store.ErrConflict)

		_, err := s.service.CreateWorkflow(ctx, def)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "wf-dup")
	})

	s.Run("invalid definition never reaches the store", func() {
		def := models.WorkflowDefinition{
			WorkflowID:  "wf-bad",
			InitialStep: "missing",
			Steps:       map[string]models.StepDefinition{"other": {}},
		}
		s.mockStore.EXPECT().InsertWorkflow(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.CreateWorkflow(ctx, def)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestGetWorkflow() {
	ctx := context.Background()

	s.Run("unknown id is not found", func() {
		s.mockStore.EXPECT().FindWorkflow(ctx, "nope").Return(models.WorkflowDefinition{}, store.ErrNotFound)

		_, err := s.service.GetWorkflow(ctx, "nope")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "workflowId='nope'")
	})
}

// =============================================================================
// CreateExchange Tests
// =============================================================================

func (s *ServiceSuite) TestCreateExchange() {
	ctx := context.Background()

	s.Run("seeds the initial step and returns the exchange URL", func() {
		def := twoStepWorkflow("wf-1")
		var inserted *exchange.Exchange
		s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
		s.mockStore.EXPECT().
			InsertExchange(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, ex *exchange.Exchange) error {
				inserted = ex
				return nil
			})

		result, err := s.service.CreateExchange(ctx, "wf-1")
		s.NoError(err)
		s.Require().NotNil(inserted)
		s.Equal(testBaseURL+"/workflows/wf-1/exchanges/"+inserted.ExchangeID, result.ExchangeID)
		s.Equal("presentation", result.Step)
		s.Equal(models.ExchangeStatePending, result.State)
		s.Len(inserted.Steps, 1)
		s.Require().NotNil(inserted.CurrentStep().PresentationRequest)
		s.NotEmpty(inserted.CurrentStep().PresentationRequest.Challenge)
	})

	s.Run("unknown workflow is not found", func() {
		s.mockStore.EXPECT().FindWorkflow(ctx, "nope").Return(models.WorkflowDefinition{}, store.ErrNotFound)

		_, err := s.service.CreateExchange(ctx, "nope")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Participate Tests: probe
// =============================================================================
// A nil presentation is a probe. It must return the current step's response
// without any write, so holders can retry it freely.

func (s *ServiceSuite) TestParticipateProbe() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")

	s.Run("returns the pending request without writing", func() {
		ex := newExchangeFor(def)
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil).Times(2)
		s.mockStore.EXPECT().SaveExchange(gomock.Any(), gomock.Any()).Times(0)

		first, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, nil)
		s.NoError(err)
		s.Require().NotNil(first.Response.VerifiablePresentationRequest)
		s.True(first.Processing)

		second, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, nil)
		s.NoError(err)
		s.Equal(first.Response.VerifiablePresentationRequest.Challenge,
			second.Response.VerifiablePresentationRequest.Challenge)
	})

	s.Run("completed exchange reports not processing", func() {
		ex := newExchangeFor(def)
		ex.State = models.ExchangeStateCompleted
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)

		result, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, nil)
		s.NoError(err)
		s.False(result.Processing)
	})

	s.Run("unknown exchange is not found", func() {
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", "nope").Return(nil, store.ErrNotFound)

		_, err := s.service.ParticipateInExchange(ctx, "wf-1", "nope", nil)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "exchangeId='nope'")
	})
}

// =============================================================================
// Participate Tests: submission
// =============================================================================

func (s *ServiceSuite) TestParticipateAdvancesToNextStep() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	vp := holderVP("did:example:holder")

	var saved *exchange.Exchange
	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockVerifier.EXPECT().
		VerifyVpRequestSubmission(gomock.Any(), vp, gomock.Any()).
		Return(models.VerificationResult{Verified: true}, nil)
	s.mockStore.EXPECT().
		SaveExchange(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e *exchange.Exchange) error {
			saved = e
			return nil
		})
	s.mockDispatcher.EXPECT().
		DispatchAsync(def.Steps["presentation"].Callback, gomock.Any()).
		Do(func(_ []models.CallbackConfiguration, payload callback.Payload) {
			s.Equal("presentation", payload.StepID)
			s.Equal(ex.ExchangeID, payload.ExchangeID)
			s.Require().NotNil(payload.PresentationSubmission)
			s.Equal(vp.Holder, payload.PresentationSubmission.VerifiablePresentation.Holder)
		})

	result, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.NoError(err)
	s.Empty(result.Errors)
	s.True(result.Processing)

	s.Require().NotNil(saved)
	s.Len(saved.Steps, 2)
	s.Equal("issuance", saved.CurrentStep().StepID)
	s.Equal(models.ExchangeStateActive, saved.State)
	s.Equal(testBaseURL+"/workflows/wf-1/exchanges/"+ex.ExchangeID, result.Response.RedirectURL)
}

func (s *ServiceSuite) TestParticipateCompletesTerminalStep() {
	ctx := context.Background()
	def := singleStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	vp := holderVP("did:example:holder")

	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockVerifier.EXPECT().
		VerifyVpRequestSubmission(gomock.Any(), vp, gomock.Any()).
		Return(models.VerificationResult{Verified: true}, nil)
	s.mockStore.EXPECT().SaveExchange(ctx, gomock.Any()).Return(nil)

	result, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.NoError(err)
	s.False(result.Processing)
	s.Equal(models.ExchangeStateCompleted, ex.State)
	s.Len(ex.Steps, 1)
}

func (s *ServiceSuite) TestParticipateVerificationFailure() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	vp := holderVP("did:example:holder")
	verificationErrors := []string{"invalid signature"}

	var saved *exchange.Exchange
	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockVerifier.EXPECT().
		VerifyVpRequestSubmission(gomock.Any(), vp, gomock.Any()).
		Return(models.VerificationResult{Verified: false, Errors: verificationErrors}, nil)
	s.mockStore.EXPECT().
		SaveExchange(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e *exchange.Exchange) error {
			saved = e
			return nil
		})
	s.mockDispatcher.EXPECT().DispatchAsync(gomock.Any(), gomock.Any()).Times(0)

	result, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal(verificationErrors, result.Errors)

	// The failed submission is persisted for audit and the exchange does not
	// advance.
	s.Require().NotNil(saved)
	s.Len(saved.Steps, 1)
	s.Require().NotNil(saved.CurrentStep().Submission)
	s.Equal(models.StepStateInProgress, saved.CurrentStep().State)
}

func (s *ServiceSuite) TestParticipateIdentityMismatch() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	ex.CurrentStep().Submission = &models.PresentationSubmission{
		VerifiablePresentation: holderVP("did:example:alice"),
		VerificationResult:     models.VerificationResult{Verified: false, Errors: []string{"invalid signature"}},
	}
	vp := holderVP("did:example:mallory")

	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockVerifier.EXPECT().VerifyVpRequestSubmission(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockStore.EXPECT().SaveExchange(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal("did:example:alice", ex.CurrentStep().Submission.VerifiablePresentation.Holder)
}

func (s *ServiceSuite) TestParticipateCompletedExchangeRejectsSubmission() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	ex.State = models.ExchangeStateCompleted
	vp := holderVP("did:example:holder")

	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockStore.EXPECT().SaveExchange(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestParticipateConcurrentSaveConflict() {
	ctx := context.Background()
	def := singleStepWorkflow("wf-1")
	ex := newExchangeFor(def)
	vp := holderVP("did:example:holder")

	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
	s.mockStore.EXPECT().FindWorkflow(ctx, "wf-1").Return(def, nil)
	s.mockVerifier.EXPECT().
		VerifyVpRequestSubmission(gomock.Any(), vp, gomock.Any()).
		Return(models.VerificationResult{Verified: true}, nil)
	s.mockStore.EXPECT().SaveExchange(ctx, gomock.Any()).Return(store.ErrConflict)
	s.mockDispatcher.EXPECT().DispatchAsync(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.ParticipateInExchange(ctx, "wf-1", ex.ExchangeID, &vp)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

// =============================================================================
// Exchange State and Step Tests
// =============================================================================

func (s *ServiceSuite) TestGetExchangeState() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)

	s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)

	state, err := s.service.GetExchangeState(ctx, "wf-1", ex.ExchangeID)
	s.NoError(err)
	s.Equal(ex.ExchangeID, state.ExchangeID)
	s.Equal("presentation", state.Step)
	s.Equal(models.ExchangeStatePending, state.State)
}

func (s *ServiceSuite) TestGetExchangeStep() {
	ctx := context.Background()
	def := twoStepWorkflow("wf-1")
	ex := newExchangeFor(def)

	s.Run("returns the step with its response", func() {
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)

		result, err := s.service.GetExchangeStep(ctx, "wf-1", ex.ExchangeID, "presentation")
		s.NoError(err)
		s.Equal("presentation", result.StepID)
		s.Require().NotNil(result.StepResponse.VerifiablePresentationRequest)
	})

	s.Run("unknown step id is a distinct not found", func() {
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)

		_, err := s.service.GetExchangeStep(ctx, "wf-1", ex.ExchangeID, "nope")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "stepId='nope'")
	})
}

// =============================================================================
// AddIssuanceVP Tests
// =============================================================================
// The reviewer action that attaches an issued presentation to an issuance
// step. It resolves the holder's polling on the redirect URL.

func (s *ServiceSuite) TestAddIssuanceVP() {
	ctx := context.Background()
	issuanceOnly := models.WorkflowDefinition{
		WorkflowID:  "wf-1",
		InitialStep: "issuance",
		Steps:       map[string]models.StepDefinition{"issuance": {}},
	}
	issued := holderVP("did:example:issuer")

	s.Run("attaches the issued presentation and persists", func() {
		ex := newExchangeFor(issuanceOnly)
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
		s.mockStore.EXPECT().SaveExchange(ctx, ex).Return(nil)

		result, err := s.service.AddIssuanceVP(ctx, "wf-1", ex.ExchangeID, "issuance", issued)
		s.NoError(err)
		s.Equal(models.StepStateCompleted, result.Step.State)
		s.Require().NotNil(result.StepResponse.VerifiablePresentation)
		s.Equal("did:example:issuer", result.StepResponse.VerifiablePresentation.Holder)
	})

	s.Run("second attach is a conflict", func() {
		ex := newExchangeFor(issuanceOnly)
		s.Require().NoError(ex.CurrentStep().AttachIssuedVP(issued))
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
		s.mockStore.EXPECT().SaveExchange(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.AddIssuanceVP(ctx, "wf-1", ex.ExchangeID, "issuance", issued)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("query step rejects an issued presentation", func() {
		def := twoStepWorkflow("wf-1")
		ex := newExchangeFor(def)
		s.mockStore.EXPECT().FindExchange(ctx, "wf-1", ex.ExchangeID).Return(ex, nil)
		s.mockStore.EXPECT().SaveExchange(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.AddIssuanceVP(ctx, "wf-1", ex.ExchangeID, "presentation", issued)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// =============================================================================
// Full Traversal Test
// =============================================================================
// Drives a two step workflow end to end against the real in-memory store:
// create, probe, submit, poll the issuance redirect, attach the issued VP,
// and read it back.

func (s *ServiceSuite) TestFullTraversal() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(store.NewInMemoryStore(), s.mockVerifier, s.mockDispatcher, testBaseURL, WithLogger(logger))

	def, err := svc.CreateWorkflow(ctx, twoStepWorkflow("wf-e2e"))
	s.Require().NoError(err)

	created, err := svc.CreateExchange(ctx, def.WorkflowID)
	s.Require().NoError(err)
	exchangeID := created.ExchangeID[len(testBaseURL+"/workflows/wf-e2e/exchanges/"):]

	probe, err := svc.ParticipateInExchange(ctx, "wf-e2e", exchangeID, nil)
	s.Require().NoError(err)
	s.Require().NotNil(probe.Response.VerifiablePresentationRequest)
	challenge := probe.Response.VerifiablePresentationRequest.Challenge
	s.NotEmpty(challenge)

	vp := holderVP("did:example:holder")
	s.mockVerifier.EXPECT().
		VerifyVpRequestSubmission(gomock.Any(), vp, gomock.Any()).
		Return(models.VerificationResult{Verified: true}, nil)
	s.mockDispatcher.EXPECT().DispatchAsync(gomock.Any(), gomock.Any())

	submitted, err := svc.ParticipateInExchange(ctx, "wf-e2e", exchangeID, &vp)
	s.Require().NoError(err)
	s.True(submitted.Processing)
	s.Equal(created.ExchangeID, submitted.Response.RedirectURL)

	// The holder polls the redirect URL; the issued VP is not there yet.
	poll, err := svc.ParticipateInExchange(ctx, "wf-e2e", exchangeID, nil)
	s.Require().NoError(err)
	s.Equal(created.ExchangeID, poll.Response.RedirectURL)

	issued := holderVP("did:example:issuer")
	_, err = svc.AddIssuanceVP(ctx, "wf-e2e", exchangeID, "issuance", issued)
	s.Require().NoError(err)

	final, err := svc.ParticipateInExchange(ctx, "wf-e2e", exchangeID, nil)
	s.Require().NoError(err)
	s.Require().NotNil(final.Response.VerifiablePresentation)
	s.Equal("did:example:issuer", final.Response.VerifiablePresentation.Holder)

	state, err := svc.GetExchangeState(ctx, "wf-e2e", exchangeID)
	s.Require().NoError(err)
	s.Equal("issuance", state.Step)
}
