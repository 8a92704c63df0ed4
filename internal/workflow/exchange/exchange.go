// Package exchange implements the multi-step exchange protocol engine: one
// Exchange is a stateful traversal of a workflow's step graph by a single
// holder. The aggregate is reconstructed from persisted state on every
// request; there is no in-memory session.
package exchange

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/impactility/vc-api/internal/workflow/models"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

// Exchange is one in-progress traversal of a workflow's step graph. Steps is
// an ordered, append-only history of instantiated steps; the last element is
// always the current step. Version supports compare-and-swap persistence so
// concurrent writers cannot silently discard each other's transitions.
type Exchange struct {
	ExchangeID string               `json:"exchangeId"`
	WorkflowID string               `json:"workflowId"`
	State      models.ExchangeState `json:"state"`
	Steps      []Step               `json:"steps"`
	Version    int64                `json:"version"`
}

// New creates an exchange rooted at the workflow's initial step. The initial
// step is hydrated immediately so the exchange always has a current step.
func New(workflowID string, initialStep models.StepDefinition, initialStepID, baseURL string) *Exchange {
	e := &Exchange{
		ExchangeID: uuid.NewString(),
		WorkflowID: workflowID,
		State:      models.ExchangeStatePending,
	}
	e.Steps = append(e.Steps, e.hydrateStep(initialStep, initialStepID, baseURL))
	return e
}

// CurrentStep returns the last step in the history. The constructor seeds
// the initial step, so a persisted exchange always has one.
func (e *Exchange) CurrentStep() *Step {
	if len(e.Steps) == 0 {
		return nil
	}
	return &e.Steps[len(e.Steps)-1]
}

// Step looks up a step by id across the history. Step counts are single
// digits to low tens, so a linear scan is fine.
func (e *Exchange) Step(stepID string) (*Step, error) {
	for i := range e.Steps {
		if e.Steps[i].StepID == stepID {
			return &e.Steps[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound,
		fmt.Sprintf("stepId='%s' does not exist in exchange '%s'", stepID, e.ExchangeID))
}

// Response composes the externally visible response for the current step.
func (e *Exchange) Response() models.ExchangeResponse {
	current := e.CurrentStep()
	if current == nil {
		return models.ExchangeResponse{}
	}
	return current.Response()
}

// Outcome is the result of one participation call: the response to return to
// the holder, any verification errors, the completed step's callback targets
// and the raw verification result.
type Outcome struct {
	Response           models.ExchangeResponse
	Errors             []string
	Callback           []models.CallbackConfiguration
	VerificationResult *models.VerificationResult
}

// Participate processes one holder submission against the current step and
// advances the step graph.
//
// The current step processes the presentation first. Verification errors
// abort advancement but keep the recorded submission. On a clean submission,
// a configured next step is hydrated and appended as the new current step;
// without one the exchange completes. The returned response and callback
// belong to the step that just processed the submission.
//
// A completed exchange accepts no further participation.
func (e *Exchange) Participate(ctx context.Context, presentation models.VerifiablePresentation, verifier SubmissionVerifier, nextStep *models.StepDefinition, nextStepID, baseURL string) (Outcome, error) {
	if e.State == models.ExchangeStateCompleted {
		return Outcome{}, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("exchangeId='%s' is already completed", e.ExchangeID))
	}
	e.State = models.ExchangeStateActive

	current := e.CurrentStep()
	if current == nil {
		return Outcome{}, dErrors.New(dErrors.CodeInternal, "exchange has no steps")
	}

	result, err := current.ProcessPresentation(ctx, presentation, verifier)
	if err != nil {
		return Outcome{}, err
	}

	if len(result.Errors) > 0 {
		return Outcome{
			Errors:             result.Errors,
			Callback:           current.Callback,
			VerificationResult: result.VerificationResult,
		}, nil
	}

	if nextStep != nil {
		e.Steps = append(e.Steps, e.hydrateStep(*nextStep, nextStepID, baseURL))
	} else {
		e.State = models.ExchangeStateCompleted
	}

	return Outcome{
		Response:           e.Response(),
		Errors:             []string{},
		Callback:           current.Callback,
		VerificationResult: result.VerificationResult,
	}, nil
}

// hydrateStep translates a step definition into a concrete step instance for
// this exchange. Query steps get a fresh random challenge on every
// hydration; challenges are never reused across steps or exchanges. The
// interaction service endpoint embeds the workflow and exchange identifiers
// under the caller-supplied base URL.
func (e *Exchange) hydrateStep(def models.StepDefinition, stepID, baseURL string) Step {
	serviceEndpoint := fmt.Sprintf("%s/workflows/%s/exchanges/%s", baseURL, e.WorkflowID, e.ExchangeID)

	if def.PresentationRequest != nil {
		services := make([]models.InteractService, 0, len(def.PresentationRequest.InteractServices))
		for _, sd := range def.PresentationRequest.InteractServices {
			services = append(services, models.InteractService{
				Type:            sd.Type,
				ServiceEndpoint: serviceEndpoint,
			})
		}
		return Step{
			StepID:   stepID,
			Kind:     StepKindQuery,
			State:    models.StepStateStarted,
			Callback: def.Callback,
			PresentationRequest: &models.VpRequest{
				Query:     def.PresentationRequest.Query,
				Challenge: uuid.NewString(),
				Interact:  models.VpRequestInteract{Service: services},
				Domain:    baseURL,
			},
		}
	}

	// No presentation request means the step delivers an issued credential.
	return Step{
		StepID:            stepID,
		Kind:              StepKindIssuance,
		State:             models.StepStateStarted,
		Callback:          def.Callback,
		HolderRedirectURL: serviceEndpoint,
	}
}
