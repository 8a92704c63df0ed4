package exchange

import (
	"context"
	"fmt"

	"github.com/impactility/vc-api/internal/workflow/models"
	dErrors "github.com/impactility/vc-api/pkg/domain-errors"
)

// StepKind discriminates the two step variants. Steps are persisted as part
// of the exchange JSON blob, so the discriminant is an explicit tag rather
// than a runtime type probe.
type StepKind string

const (
	StepKindQuery    StepKind = "query"
	StepKindIssuance StepKind = "issuance"
)

// SubmissionVerifier verifies a presentation submitted in response to a VP
// request. Implementations must be safe to call with a structurally valid
// but cryptographically invalid presentation: they return Verified=false
// with Errors populated instead of failing.
type SubmissionVerifier interface {
	VerifyVpRequestSubmission(ctx context.Context, vp models.VerifiablePresentation, vpRequest *models.VpRequest) (models.VerificationResult, error)
}

// Step is one unit of interaction within an exchange: either a request for a
// presentation (query) or delivery of a newly issued credential (issuance).
// Kind selects which of the variant field groups is meaningful; every
// consumer switches on it exhaustively.
type Step struct {
	StepID   string                         `json:"stepId"`
	Kind     StepKind                       `json:"kind"`
	State    models.StepState               `json:"state"`
	Callback []models.CallbackConfiguration `json:"callback,omitempty"`

	// Query step fields.
	PresentationRequest *models.VpRequest              `json:"verifiablePresentationRequest,omitempty"`
	Submission          *models.PresentationSubmission `json:"presentationSubmission,omitempty"`

	// Issuance step fields. IssuedVP is set exactly once by an external
	// reviewer action, never by presentation processing.
	HolderRedirectURL string                         `json:"holderRedirectUrl,omitempty"`
	IssuedVP          *models.VerifiablePresentation `json:"issuedVP,omitempty"`
}

// ProcessResult carries the outcome of processing a presentation against a
// step. Verification errors are data, not Go errors: they are returned to
// the caller and the submission is still recorded for audit.
type ProcessResult struct {
	Errors             []string
	VerificationResult *models.VerificationResult
}

// ProcessPresentation routes a holder-submitted presentation to the step's
// variant behavior.
//
// A query step verifies the presentation against its VP request and records
// the submission verbatim, even when verification failed. A repeated
// submission must come from the same holder DID as the first one; a mismatch
// fails without mutating the step. The step completes when verification
// returns zero errors.
//
// An issuance step accepts no holder-submitted presentation: processing is a
// no-op with a nil verification result, since progression is driven by an
// external reviewer attaching the issued VP.
func (s *Step) ProcessPresentation(ctx context.Context, presentation models.VerifiablePresentation, verifier SubmissionVerifier) (ProcessResult, error) {
	switch s.Kind {
	case StepKindQuery:
		return s.processQuerySubmission(ctx, presentation, verifier)
	case StepKindIssuance:
		return ProcessResult{Errors: []string{}}, nil
	default:
		return ProcessResult{}, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("unknown step kind '%s'", s.Kind))
	}
}

func (s *Step) processQuerySubmission(ctx context.Context, presentation models.VerifiablePresentation, verifier SubmissionVerifier) (ProcessResult, error) {
	if s.Submission != nil && s.Submission.VerifiablePresentation.Holder != presentation.Holder {
		return ProcessResult{}, dErrors.New(dErrors.CodeForbidden,
			"DID does not match the DID that initially submitted the presentation")
	}

	result, err := verifier.VerifyVpRequestSubmission(ctx, presentation, s.PresentationRequest)
	if err != nil {
		return ProcessResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "submission verification failed")
	}

	s.Submission = &models.PresentationSubmission{
		VerifiablePresentation: presentation,
		VerificationResult:     result,
	}
	if len(result.Errors) == 0 {
		s.State = models.StepStateCompleted
	} else {
		s.State = models.StepStateInProgress
	}

	return ProcessResult{Errors: result.Errors, VerificationResult: &result}, nil
}

// Response composes the externally visible view of the step: the VP request
// for a query step; for an issuance step the issued VP once present,
// otherwise the redirect URL the holder polls.
func (s *Step) Response() models.ExchangeResponse {
	switch s.Kind {
	case StepKindQuery:
		return models.ExchangeResponse{VerifiablePresentationRequest: s.PresentationRequest}
	case StepKindIssuance:
		if s.IssuedVP != nil {
			return models.ExchangeResponse{VerifiablePresentation: s.IssuedVP}
		}
		return models.ExchangeResponse{RedirectURL: s.HolderRedirectURL}
	default:
		return models.ExchangeResponse{}
	}
}

// AttachIssuedVP records the VP produced by the issuer review for an
// issuance step and marks the step completed. It can be called exactly once.
func (s *Step) AttachIssuedVP(vp models.VerifiablePresentation) error {
	if s.Kind != StepKindIssuance {
		return dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("step '%s' is not an issuance step", s.StepID))
	}
	if s.IssuedVP != nil {
		return dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("step '%s' already has an issued presentation", s.StepID))
	}
	s.IssuedVP = &vp
	s.State = models.StepStateCompleted
	return nil
}
