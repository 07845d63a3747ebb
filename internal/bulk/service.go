package bulk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"ecar.org/esign/internal/envelope"
	"ecar.org/esign/internal/rest"
)

// Placeholder recipient convention: the envelope carries a synthetic signer
// per role and the vendor's bulk-send pass replaces it with each list entry.
const (
	placeholderNamePrefix  = "Multi Bulk Recipient::"
	placeholderEmailFormat = "multiBulkRecipients-%s@docusign.com"
)

// Service runs the bulk-send protocol. The three phases (sending list,
// draft envelope, send request) are not atomic: a failure after phase 1
// leaves an orphaned list, a failure after phase 2 additionally leaves a
// draft envelope. There is no vendor-side rollback; errors name the phase so
// callers can clean up by hand.
type Service struct {
	api       *rest.Client
	envelopes *envelope.Service
}

// NewService constructs a Service.
func NewService(api *rest.Client, envelopes *envelope.Service) *Service {
	return &Service{api: api, envelopes: envelopes}
}

// BuildSendingList assembles the phase-1 payload. Every recipient entry must
// carry a tracking identifier: the identifier becomes a correlation custom
// field on the copy, and bulk send cannot target an email-only recipient.
func BuildSendingList(req *Request) (*sendingList, error) {
	if req.BatchName == "" {
		return nil, &envelope.ValidationError{Field: "batch name"}
	}
	if len(req.Recipients) == 0 {
		return nil, &envelope.ValidationError{Field: "recipients"}
	}
	list := &sendingList{Name: req.BatchName}
	for i, rcp := range req.Recipients {
		if rcp.TrackingID() == "" {
			return nil, &envelope.ValidationError{
				Field:  "recipient tracking id",
				Reason: fmt.Sprintf("recipient %d (%s) has no tracking identifier", i+1, rcp.Email()),
			}
		}
		copyRcp := copyRecipient{
			Name:         rcp.Name(),
			Email:        rcp.Email(),
			RoleName:     rcp.Role(),
			ClientUserID: rcp.TrackingID(),
		}
		for _, p := range rcp.Presets() {
			copyRcp.Tabs = append(copyRcp.Tabs, copyTab{TabLabel: p.Label, InitialValue: p.Value})
		}
		bc := bulkCopy{
			EmailSubject: rcp.Subject(),
			EmailBlurb:   rcp.Blurb(),
			Recipients:   []copyRecipient{copyRcp},
			CustomFields: []copyCustomField{{Name: trackingFieldName, Value: rcp.TrackingID()}},
		}
		list.BulkCopies = append(list.BulkCopies, bc)
	}
	return list, nil
}

// Send runs the three-phase bulk submission and fills in req.ListID and
// req.BatchID as each phase completes.
func (s *Service) Send(ctx context.Context, req *Request, opts *envelope.SendOptions) error {
	list, err := BuildSendingList(req)
	if err != nil {
		return err
	}
	templates := req.templates()
	if len(templates) == 1 && templates[0] == "" {
		return &envelope.ValidationError{Field: "template name"}
	}

	// Phase 1: submit the sending list.
	var created sendingList
	if err := s.api.Do(ctx, "bulk.list_create", http.MethodPost, "/bulk_send_lists", list, &created); err != nil {
		return fmt.Errorf("bulk send phase 1 (sending list): %w", err)
	}
	req.ListID = created.ListID

	// Phase 2: create the draft envelope with placeholder recipients and
	// the list identifier pinned as a custom field.
	role := placeholderRole(req)
	placeholder := envelope.InlineSigner(
		placeholderNamePrefix+role,
		fmt.Sprintf(placeholderEmailFormat, role),
		role, "", nil)
	def, err := s.envelopes.BuildDefinition(ctx, templates, &placeholder, req.EmailSubject, req.EmailBlurb, opts)
	if err != nil {
		return fmt.Errorf("bulk send phase 2 (envelope, list %s orphaned): %w", req.ListID, err)
	}
	def.Status = "created"
	def.CustomFields = &envelope.CustomFields{
		TextCustomFields: []envelope.TextCustomField{
			{Name: mailingListFieldName, Value: req.ListID, Required: "false", Show: "false"},
			{Name: batchRefFieldName, Value: uuid.NewString(), Required: "false", Show: "false"},
		},
	}
	var summary envelope.Summary
	if err := s.api.Do(ctx, "bulk.envelope_create", http.MethodPost, "/envelopes", def, &summary); err != nil {
		return fmt.Errorf("bulk send phase 2 (envelope, list %s orphaned): %w", req.ListID, err)
	}

	// Phase 3: correlate envelope and list, receiving the batch.
	sendReq := sendRequest{EnvelopeOrTemplateID: summary.EnvelopeID}
	var sent sendResponse
	path := "/bulk_send_lists/" + req.ListID + "/send"
	if err := s.api.Do(ctx, "bulk.send", http.MethodPost, path, sendReq, &sent); err != nil {
		return fmt.Errorf("bulk send phase 3 (send, list %s and envelope %s orphaned): %w",
			req.ListID, summary.EnvelopeID, err)
	}
	req.BatchID = sent.BatchID
	return nil
}

// Status fetches the batch progress counters.
func (s *Service) Status(ctx context.Context, batchID string) (*BatchStatus, error) {
	if batchID == "" {
		return nil, &envelope.ValidationError{Field: "batch id"}
	}
	var status BatchStatus
	if err := s.api.Do(ctx, "bulk.batch_status", http.MethodGet, "/bulk_send_batch/"+batchID, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// placeholderRole picks the envelope-level role for the placeholder signer.
// Every copy recipient shares the template role, so the first entry decides.
func placeholderRole(req *Request) string {
	for _, rcp := range req.Recipients {
		if r := rcp.Role(); r != "" {
			return r
		}
	}
	return "signer"
}
