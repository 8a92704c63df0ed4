package models

import "encoding/json"

// VerifiablePresentation is a signed wrapper bundling one or more verifiable
// credentials, presented by a holder. Credentials and proof are carried
// opaquely; their cryptographic verification is delegated to the external
// credential verifier.
type VerifiablePresentation struct {
	Context              []json.RawMessage `json:"@context,omitempty"`
	ID                   string            `json:"id,omitempty"`
	Type                 []string          `json:"type,omitempty"`
	VerifiableCredential []json.RawMessage `json:"verifiableCredential,omitempty"`
	Holder               string            `json:"holder,omitempty"`
	Proof                json.RawMessage   `json:"proof,omitempty"`
}

// VpRequestQuery is a single query sent to the holder within a VP request.
type VpRequestQuery struct {
	Type QueryType `json:"type"`
	// CredentialQuery carries the query payload. Its shape depends on the
	// query type and is passed through to the holder untouched.
	CredentialQuery []json.RawMessage `json:"credentialQuery"`
}

// InteractService is one concrete interaction mechanism offered to the
// holder, with the endpoint resolved for a specific exchange.
type InteractService struct {
	Type            InteractServiceType `json:"type"`
	ServiceEndpoint string              `json:"serviceEndpoint"`
}

// VpRequestInteract lists the interaction mechanisms supported for a request.
type VpRequestInteract struct {
	Service []InteractService `json:"service"`
}

// VpRequest is a Verifiable Presentation Request as defined by
// https://w3c-ccg.github.io/vp-request-spec/. The challenge prevents replay
// and is generated fresh for every step instantiation.
type VpRequest struct {
	Query     []VpRequestQuery  `json:"query"`
	Challenge string            `json:"challenge"`
	Interact  VpRequestInteract `json:"interact"`
	Domain    string            `json:"domain"`
}

// VerificationResult is the outcome of verifying a credential or
// presentation. A failed verification is data, not an error: Verified is
// false and Errors is populated.
// https://w3c-ccg.github.io/vc-api/verifier.html
type VerificationResult struct {
	Verified bool     `json:"verified"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// PresentationSubmission records a presentation submitted in response to a
// VP request together with its verification result. Retained even when
// verification failed, for audit.
type PresentationSubmission struct {
	VerifiablePresentation VerifiablePresentation `json:"verifiablePresentation"`
	VerificationResult     VerificationResult     `json:"verificationResult"`
}

// ExchangeResponse describes the possible contents of a response to a
// start/continue exchange request. At most one of the three fields is
// populated: a VP request when more information is needed from the holder, a
// VP for an issuance result, or a redirect URL for polling.
type ExchangeResponse struct {
	VerifiablePresentationRequest *VpRequest              `json:"verifiablePresentationRequest,omitempty"`
	VerifiablePresentation        *VerifiablePresentation `json:"verifiablePresentation,omitempty"`
	RedirectURL                   string                  `json:"redirectUrl,omitempty"`
}
