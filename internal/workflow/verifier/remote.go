package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/impactility/vc-api/internal/workflow/models"
)

// RemoteVerifier calls a VC-API verifier service to verify presentation
// proofs (POST {baseURL}/presentations/verify). A failed verification is a
// 200/400 response carrying the verification result; only transport faults
// and unexpected statuses become Go errors.
type RemoteVerifier struct {
	baseURL string
	client  *http.Client
}

// RemoteOption configures the RemoteVerifier.
type RemoteOption func(*RemoteVerifier)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) RemoteOption {
	return func(r *RemoteVerifier) {
		r.client = client
	}
}

// NewRemoteVerifier constructs a client for the verifier service at baseURL.
func NewRemoteVerifier(baseURL string, opts ...RemoteOption) *RemoteVerifier {
	r := &RemoteVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type verifyPresentationRequest struct {
	VerifiablePresentation models.VerifiablePresentation `json:"verifiablePresentation"`
	Options                ProofOptions                  `json:"options"`
}

// VerifyPresentation implements PresentationVerifier.
func (r *RemoteVerifier) VerifyPresentation(ctx context.Context, vp models.VerifiablePresentation, opts ProofOptions) (models.VerificationResult, error) {
	body, err := json.Marshal(verifyPresentationRequest{
		VerifiablePresentation: vp,
		Options:                opts,
	})
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/presentations/verify", bytes.NewReader(body))
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("call verifier: %w", err)
	}
	defer resp.Body.Close()

	// Verifiers report failed verification in the result body, on 200 or
	// 400 depending on the implementation.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return models.VerificationResult{}, fmt.Errorf("verifier returned status %d", resp.StatusCode)
	}

	var result models.VerificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.VerificationResult{}, fmt.Errorf("decode verification result: %w", err)
	}
	return result, nil
}
