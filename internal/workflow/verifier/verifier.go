// Package verifier checks presentation submissions against the VP request
// that prompted them. Cryptographic proof verification is delegated to an
// external presentation verifier; this package layers the submission checks
// the protocol itself requires (challenge match, holder presence) on top.
package verifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/impactility/vc-api/internal/workflow/models"
)

// ProofOptions are the expected proof parameters handed to the external
// verifier alongside the presentation.
type ProofOptions struct {
	Challenge    string `json:"challenge"`
	Domain       string `json:"domain,omitempty"`
	ProofPurpose string `json:"proofPurpose,omitempty"`
}

// PresentationVerifier is the external collaborator that verifies the
// cryptographic proof of a presentation. It must not fail on an invalid
// signature; it reports Verified=false with errors instead.
type PresentationVerifier interface {
	VerifyPresentation(ctx context.Context, vp models.VerifiablePresentation, opts ProofOptions) (models.VerificationResult, error)
}

// SubmissionVerifier implements the exchange engine's submission
// verification contract on top of a PresentationVerifier.
type SubmissionVerifier struct {
	presentations PresentationVerifier
}

// NewSubmissionVerifier constructs a submission verifier delegating proof
// checks to the given presentation verifier.
func NewSubmissionVerifier(presentations PresentationVerifier) *SubmissionVerifier {
	return &SubmissionVerifier{presentations: presentations}
}

// VerifyVpRequestSubmission verifies the presentation's proof against the
// request's challenge and domain, then validates the submission
// structurally. All failures are reported as verification errors, never as
// Go errors; the returned error is reserved for transport faults reaching
// the external verifier.
func (v *SubmissionVerifier) VerifyVpRequestSubmission(ctx context.Context, vp models.VerifiablePresentation, vpRequest *models.VpRequest) (models.VerificationResult, error) {
	result, err := v.presentations.VerifyPresentation(ctx, vp, ProofOptions{
		Challenge:    vpRequest.Challenge,
		Domain:       vpRequest.Domain,
		ProofPurpose: "authentication",
	})
	if err != nil {
		return models.VerificationResult{}, err
	}

	result.Errors = append(result.Errors, validateSubmission(vp, vpRequest)...)
	if len(result.Errors) > 0 {
		result.Verified = false
	}
	return result, nil
}

// validateSubmission performs the protocol-level checks on a submission:
// the proof must echo the request's replay challenge, and a DIDAuth query
// requires a holder identifier.
func validateSubmission(vp models.VerifiablePresentation, vpRequest *models.VpRequest) []string {
	var errs []string

	if challenge, ok := proofChallenge(vp.Proof); ok && challenge != vpRequest.Challenge {
		errs = append(errs, fmt.Sprintf(
			"Challenge does not match the challenge in the presentation request: '%s'", challenge))
	}

	for _, query := range vpRequest.Query {
		if query.Type == models.QueryTypeDIDAuth && vp.Holder == "" {
			errs = append(errs, "Presentation holder is required for DIDAuth query")
		}
	}
	return errs
}

// proofChallenge extracts the challenge from an opaque proof value, which
// may be a single proof object or an array of them. The first challenge
// found wins.
func proofChallenge(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	type proof struct {
		Challenge string `json:"challenge"`
	}

	var single proof
	if err := json.Unmarshal(raw, &single); err == nil && single.Challenge != "" {
		return single.Challenge, true
	}

	var many []proof
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, p := range many {
			if p.Challenge != "" {
				return p.Challenge, true
			}
		}
	}
	return "", false
}
