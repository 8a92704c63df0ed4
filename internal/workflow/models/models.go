package models

import (
	"fmt"
	"strings"

	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

// ExchangeState tracks the overall progress of an exchange.
type ExchangeState string

const (
	ExchangeStatePending   ExchangeState = "pending"
	ExchangeStateActive    ExchangeState = "active"
	ExchangeStateCompleted ExchangeState = "completed"
)

// StepState tracks the progress of a single exchange step, distinct from the
// exchange level state.
type StepState string

const (
	StepStateStarted    StepState = "started"
	StepStateInProgress StepState = "in-progress"
	StepStateCompleted  StepState = "completed"
)

// QueryType is the main extension point of the VP Request specification for
// requests for data in a presentation.
// https://w3c-ccg.github.io/vp-request-spec/#query-types
type QueryType string

const (
	QueryTypeDIDAuth                QueryType = "DIDAuth"
	QueryTypePresentationDefinition QueryType = "PresentationDefinition"
)

// InteractServiceType enumerates the interaction mechanisms a step can offer
// to the holder.
type InteractServiceType string

const (
	InteractServiceUnmediatedPresentation InteractServiceType = "UnmediatedHttpPresentationService2021"
	InteractServiceMediatedPresentation   InteractServiceType = "MediatedHttpPresentationService2021"
)

// CallbackConfiguration is one webhook target notified when a step completes.
type CallbackConfiguration struct {
	URL string `json:"url"`
}

// InteractServiceDefinition is the configuration input used to generate VPR
// interact services when a step is instantiated for an exchange. It is not
// itself a VPR interact service; the service endpoint is filled in per
// exchange.
type InteractServiceDefinition struct {
	Type InteractServiceType `json:"type"`
}

// PresentationRequestSpec describes the presentation request a query step
// issues: the queries plus the interaction service definitions. The challenge
// and concrete service endpoints are generated per exchange.
type PresentationRequestSpec struct {
	Query            []VpRequestQuery            `json:"query"`
	InteractServices []InteractServiceDefinition `json:"interactServices"`
}

// StepDefinition is one step of a workflow's step graph. A step with a
// presentation request is a query step; a step without one is an issuance
// step. NextStep is empty for terminal steps.
type StepDefinition struct {
	PresentationRequest *PresentationRequestSpec `json:"verifiablePresentationRequest,omitempty"`
	NextStep            string                   `json:"nextStep,omitempty"`
	Callback            []CallbackConfiguration  `json:"callback,omitempty"`
}

// IsQuery reports whether the step requests a presentation from the holder.
func (d StepDefinition) IsQuery() bool {
	return d.PresentationRequest != nil
}

// WorkflowDefinition is a named, reusable definition of the step graph an
// exchange will traverse. Immutable after creation.
type WorkflowDefinition struct {
	WorkflowID  string                    `json:"id"`
	Steps       map[string]StepDefinition `json:"steps"`
	InitialStep string                    `json:"initialStep"`
}

// Validate checks the structural invariants of the step graph: the initial
// step exists and every nextStep referenced from any step resolves to a
// defined step.
func (w WorkflowDefinition) Validate() error {
	if len(w.Steps) == 0 {
		return dErrors.New(dErrors.CodeValidation, "workflow must define at least one step")
	}
	if strings.TrimSpace(w.InitialStep) == "" {
		return dErrors.New(dErrors.CodeValidation, "initialStep is required")
	}
	if _, ok := w.Steps[w.InitialStep]; !ok {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("initialStep '%s' is not defined in steps", w.InitialStep))
	}
	for name, step := range w.Steps {
		if strings.TrimSpace(name) == "" {
			return dErrors.New(dErrors.CodeValidation, "step names must not be empty")
		}
		if step.NextStep != "" {
			if _, ok := w.Steps[step.NextStep]; !ok {
				return dErrors.New(dErrors.CodeValidation,
					fmt.Sprintf("step '%s' references undefined nextStep '%s'", name, step.NextStep))
			}
		}
		if step.PresentationRequest != nil && len(step.PresentationRequest.Query) == 0 {
			return dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("step '%s' declares a presentation request without queries", name))
		}
		for _, cb := range step.Callback {
			if strings.TrimSpace(cb.URL) == "" {
				return dErrors.New(dErrors.CodeValidation,
					fmt.Sprintf("step '%s' has a callback without a url", name))
			}
		}
	}
	return nil
}

// InitialStepDefinition returns the entry step of the workflow.
func (w WorkflowDefinition) InitialStepDefinition() (StepDefinition, bool) {
	def, ok := w.Steps[w.InitialStep]
	return def, ok
}

// NextStep resolves the step configured after the given one. The second
// return is the next step's name; ok is false when the given step is
// terminal.
func (w WorkflowDefinition) NextStep(currentStepID string) (StepDefinition, string, bool) {
	current, found := w.Steps[currentStepID]
	if !found || current.NextStep == "" {
		return StepDefinition{}, "", false
	}
	next, found := w.Steps[current.NextStep]
	if !found {
		return StepDefinition{}, "", false
	}
	return next, current.NextStep, true
}
