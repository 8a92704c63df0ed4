package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/impactility/vc-api/internal/workflow/models"
)

// stubPresentationVerifier returns a canned proof verification result and
// records the options it received.
type stubPresentationVerifier struct {
	result   models.VerificationResult
	err      error
	lastOpts ProofOptions
}

func (v *stubPresentationVerifier) VerifyPresentation(_ context.Context, _ models.VerifiablePresentation, opts ProofOptions) (models.VerificationResult, error) {
	v.lastOpts = opts
	return v.result, v.err
}

type SubmissionVerifierSuite struct {
	suite.Suite
}

func TestSubmissionVerifierSuite(t *testing.T) {
	suite.Run(t, new(SubmissionVerifierSuite))
}

func didAuthRequest(challenge string) *models.VpRequest {
	return &models.VpRequest{
		Query:     []models.VpRequestQuery{{Type: models.QueryTypeDIDAuth}},
		Challenge: challenge,
		Domain:    "https://vc-api.example.com",
	}
}

func presentationWithProof(holder, challenge string) models.VerifiablePresentation {
	proof, _ := json.Marshal(map[string]string{"challenge": challenge})
	return models.VerifiablePresentation{
		Holder: holder,
		Proof:  proof,
	}
}

func (s *SubmissionVerifierSuite) TestVerifyVpRequestSubmission() {
	ctx := context.Background()

	s.Run("forwards challenge and domain as proof options", func() {
		stub := &stubPresentationVerifier{result: models.VerificationResult{Verified: true}}
		v := NewSubmissionVerifier(stub)

		result, err := v.VerifyVpRequestSubmission(ctx,
			presentationWithProof("did:example:holder", "challenge-1"),
			didAuthRequest("challenge-1"))
		s.NoError(err)
		s.True(result.Verified)
		s.Empty(result.Errors)
		s.Equal("challenge-1", stub.lastOpts.Challenge)
		s.Equal("https://vc-api.example.com", stub.lastOpts.Domain)
		s.Equal("authentication", stub.lastOpts.ProofPurpose)
	})

	s.Run("challenge mismatch fails verification", func() {
		stub := &stubPresentationVerifier{result: models.VerificationResult{Verified: true}}
		v := NewSubmissionVerifier(stub)

		result, err := v.VerifyVpRequestSubmission(ctx,
			presentationWithProof("did:example:holder", "stale-challenge"),
			didAuthRequest("challenge-1"))
		s.NoError(err)
		s.False(result.Verified)
		s.Require().Len(result.Errors, 1)
		s.Contains(result.Errors[0], "stale-challenge")
	})

	s.Run("DIDAuth requires a holder", func() {
		stub := &stubPresentationVerifier{result: models.VerificationResult{Verified: true}}
		v := NewSubmissionVerifier(stub)

		result, err := v.VerifyVpRequestSubmission(ctx,
			presentationWithProof("", "challenge-1"),
			didAuthRequest("challenge-1"))
		s.NoError(err)
		s.False(result.Verified)
		s.Contains(result.Errors, "Presentation holder is required for DIDAuth query")
	})

	s.Run("proof errors accumulate with structural errors", func() {
		stub := &stubPresentationVerifier{
			result: models.VerificationResult{Verified: false, Errors: []string{"invalid signature"}},
		}
		v := NewSubmissionVerifier(stub)

		result, err := v.VerifyVpRequestSubmission(ctx,
			presentationWithProof("", "stale-challenge"),
			didAuthRequest("challenge-1"))
		s.NoError(err)
		s.False(result.Verified)
		s.Len(result.Errors, 3)
		s.Equal("invalid signature", result.Errors[0])
	})

	s.Run("transport fault is a Go error", func() {
		stub := &stubPresentationVerifier{err: errors.New("verifier unreachable")}
		v := NewSubmissionVerifier(stub)

		_, err := v.VerifyVpRequestSubmission(ctx,
			presentationWithProof("did:example:holder", "challenge-1"),
			didAuthRequest("challenge-1"))
		s.Error(err)
	})
}

func (s *SubmissionVerifierSuite) TestProofChallenge() {
	s.Run("single proof object", func() {
		challenge, ok := proofChallenge(json.RawMessage(`{"challenge":"c-1"}`))
		s.True(ok)
		s.Equal("c-1", challenge)
	})

	s.Run("proof array takes the first challenge", func() {
		challenge, ok := proofChallenge(json.RawMessage(`[{"type":"Ed25519Signature2020"},{"challenge":"c-2"}]`))
		s.True(ok)
		s.Equal("c-2", challenge)
	})

	s.Run("absent proof", func() {
		_, ok := proofChallenge(nil)
		s.False(ok)
	})

	s.Run("proof without challenge", func() {
		_, ok := proofChallenge(json.RawMessage(`{"type":"Ed25519Signature2020"}`))
		s.False(ok)
	})
}

// =============================================================================
// RemoteVerifier Tests
// =============================================================================

type RemoteVerifierSuite struct {
	suite.Suite
}

func TestRemoteVerifierSuite(t *testing.T) {
	suite.Run(t, new(RemoteVerifierSuite))
}

func (s *RemoteVerifierSuite) TestVerifyPresentation() {
	ctx := context.Background()
	vp := presentationWithProof("did:example:holder", "challenge-1")
	opts := ProofOptions{Challenge: "challenge-1", ProofPurpose: "authentication"}

	s.Run("posts the presentation with options", func() {
		var gotPath string
		var gotBody verifyPresentationRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			s.NoError(json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(models.VerificationResult{Verified: true})
		}))
		defer srv.Close()

		result, err := NewRemoteVerifier(srv.URL).VerifyPresentation(ctx, vp, opts)
		s.NoError(err)
		s.True(result.Verified)
		s.Equal("/presentations/verify", gotPath)
		s.Equal("did:example:holder", gotBody.VerifiablePresentation.Holder)
		s.Equal("challenge-1", gotBody.Options.Challenge)
	})

	s.Run("a 400 still carries a verification result", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(models.VerificationResult{
				Verified: false,
				Errors:   []string{"invalid signature"},
			})
		}))
		defer srv.Close()

		result, err := NewRemoteVerifier(srv.URL).VerifyPresentation(ctx, vp, opts)
		s.NoError(err)
		s.False(result.Verified)
		s.Equal([]string{"invalid signature"}, result.Errors)
	})

	s.Run("unexpected status is an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewRemoteVerifier(srv.URL).VerifyPresentation(ctx, vp, opts)
		s.Error(err)
		s.Contains(err.Error(), "502")
	})

	s.Run("unreachable verifier is an error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		_, err := NewRemoteVerifier(srv.URL).VerifyPresentation(ctx, vp, opts)
		s.Error(err)
	})
}
