// Package status implements the read path: stateless projections of
// envelope, recipient, document, and field state. Every operation validates
// its identifiers, then issues a single GET and maps the vendor JSON into a
// flat local model. Timestamps stay opaque strings exactly as received.
package status

import (
	"context"
	"net/http"

	"ecar.org/esign/internal/envelope"
	"ecar.org/esign/internal/rest"
)

// Service is the query surface over sent envelopes.
type Service struct {
	api *rest.Client
}

// NewService constructs a Service.
func NewService(api *rest.Client) *Service {
	return &Service{api: api}
}

// Envelope fetches the current envelope snapshot.
func (s *Service) Envelope(ctx context.Context, envelopeID string) (*EnvelopeInfo, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	var info EnvelopeInfo
	if err := s.api.Do(ctx, "status.envelope", http.MethodGet, "/envelopes/"+envelopeID, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Recipients lists the envelope's signers.
func (s *Service) Recipients(ctx context.Context, envelopeID string) ([]RecipientInfo, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	var resp recipientsResponse
	if err := s.api.Do(ctx, "status.recipients", http.MethodGet, "/envelopes/"+envelopeID+"/recipients", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Signers, nil
}

// Documents lists the envelope's documents, including the vendor-appended
// certificate entry.
func (s *Service) Documents(ctx context.Context, envelopeID string) ([]DocumentInfo, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	var resp documentsResponse
	if err := s.api.Do(ctx, "status.documents", http.MethodGet, "/envelopes/"+envelopeID+"/documents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// Document downloads one document as PDF bytes.
func (s *Service) Document(ctx context.Context, envelopeID, documentID string) ([]byte, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	if err := requireID("document id", documentID); err != nil {
		return nil, err
	}
	return s.api.DoRaw(ctx, "status.document", "/envelopes/"+envelopeID+"/documents/"+documentID, "application/pdf")
}

// Tabs fetches one recipient's field collection.
func (s *Service) Tabs(ctx context.Context, envelopeID, recipientID string) (*envelope.Tabs, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	if err := requireID("recipient id", recipientID); err != nil {
		return nil, err
	}
	var tabs envelope.Tabs
	path := "/envelopes/" + envelopeID + "/recipients/" + recipientID + "/tabs"
	if err := s.api.Do(ctx, "status.tabs", http.MethodGet, path, nil, &tabs); err != nil {
		return nil, err
	}
	return &tabs, nil
}

// CustomFields fetches the envelope-level metadata fields.
func (s *Service) CustomFields(ctx context.Context, envelopeID string) (*envelope.CustomFields, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, err
	}
	var fields envelope.CustomFields
	if err := s.api.Do(ctx, "status.custom_fields", http.MethodGet, "/envelopes/"+envelopeID+"/custom_fields", nil, &fields); err != nil {
		return nil, err
	}
	return &fields, nil
}

// CreateCustomFields attaches metadata fields to an existing envelope.
func (s *Service) CreateCustomFields(ctx context.Context, envelopeID string, fields *envelope.CustomFields) error {
	if err := requireID("envelope id", envelopeID); err != nil {
		return err
	}
	if fields == nil || (len(fields.TextCustomFields) == 0 && len(fields.ListCustomFields) == 0) {
		return &envelope.ValidationError{Field: "custom fields"}
	}
	return s.api.Do(ctx, "status.custom_fields_create", http.MethodPost, "/envelopes/"+envelopeID+"/custom_fields", fields, nil)
}

func requireID(field, value string) error {
	if value == "" {
		return &envelope.ValidationError{Field: field}
	}
	return nil
}
