package status

import (
	"context"
	"fmt"

	"ecar.org/esign/internal/envelope"
)

// FieldNotFoundError reports a tab label absent from the requested bucket.
// A miss here usually means the template and the caller disagree about the
// document layout, not a transient upstream fault.
type FieldNotFoundError struct {
	Label string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("status: field %q not found", e.Label)
}

// Field is one resolved tab value.
type Field struct {
	Label      string
	Value      string
	DocumentID string
	Status     string
}

// TextField looks up a text tab by label. An empty documentID targets the
// envelope's first document.
func (s *Service) TextField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.TextTabs })
}

// DateField looks up a date tab by label.
func (s *Service) DateField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.DateTabs })
}

// SSNField looks up a social-security-number tab by label.
func (s *Service) SSNField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.SSNTabs })
}

// FirstNameField looks up a first-name tab by label.
func (s *Service) FirstNameField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.FirstNameTabs })
}

// LastNameField looks up a last-name tab by label.
func (s *Service) LastNameField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.LastNameTabs })
}

// ListField looks up a list-selection tab by label; Value carries the
// selected option.
func (s *Service) ListField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.ListTabs })
}

// SignHereField looks up a signature tab by label; Status carries the
// signing state.
func (s *Service) SignHereField(ctx context.Context, envelopeID, documentID, label string) (*Field, error) {
	return s.lookup(ctx, envelopeID, documentID, label, func(t *envelope.Tabs) []envelope.Tab { return t.SignHereTabs })
}

// CheckboxField looks up a checkbox tab by label and reports whether it is
// selected.
func (s *Service) CheckboxField(ctx context.Context, envelopeID, documentID, label string) (bool, error) {
	tabs, docID, err := s.firstRecipientTabs(ctx, envelopeID, documentID)
	if err != nil {
		return false, err
	}
	for _, tab := range tabs.CheckboxTabs {
		if tab.TabLabel == label && (docID == "" || tab.DocumentID == docID) {
			return tab.Selected == "true", nil
		}
	}
	return false, &FieldNotFoundError{Label: label}
}

// --- helpers ---

func (s *Service) lookup(ctx context.Context, envelopeID, documentID, label string, bucket func(*envelope.Tabs) []envelope.Tab) (*Field, error) {
	tabs, docID, err := s.firstRecipientTabs(ctx, envelopeID, documentID)
	if err != nil {
		return nil, err
	}
	for _, tab := range bucket(tabs) {
		if tab.TabLabel == label && (docID == "" || tab.DocumentID == docID) {
			return &Field{
				Label:      tab.TabLabel,
				Value:      tab.Value,
				DocumentID: tab.DocumentID,
				Status:     tab.Status,
			}, nil
		}
	}
	return nil, &FieldNotFoundError{Label: label}
}

// firstRecipientTabs loads the first signer's tab collection and resolves
// the target document. An empty documentID defaults to the envelope's first
// document.
func (s *Service) firstRecipientTabs(ctx context.Context, envelopeID, documentID string) (*envelope.Tabs, string, error) {
	if err := requireID("envelope id", envelopeID); err != nil {
		return nil, "", err
	}
	recipients, err := s.Recipients(ctx, envelopeID)
	if err != nil {
		return nil, "", err
	}
	if len(recipients) == 0 {
		return nil, "", &envelope.ValidationError{Field: "recipients", Reason: "envelope has no signers"}
	}
	if documentID == "" {
		docs, err := s.Documents(ctx, envelopeID)
		if err != nil {
			return nil, "", err
		}
		if len(docs) > 0 {
			documentID = docs[0].DocumentID
		}
	}
	tabs, err := s.Tabs(ctx, envelopeID, recipients[0].RecipientID)
	if err != nil {
		return nil, "", err
	}
	return tabs, documentID, nil
}
