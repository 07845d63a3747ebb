package envelope

import (
	"context"
	"fmt"
	"net/http"

	"ecar.org/esign/internal/rest"
	"ecar.org/esign/internal/template"
)

// Service performs envelope operations: create and send signing envelopes,
// build embedded signing views, resend and void.
type Service struct {
	api       *rest.Client
	templates *template.Resolver
}

// NewService constructs a Service.
func NewService(api *rest.Client, templates *template.Resolver) *Service {
	return &Service{api: api, templates: templates}
}

// SendEmbedded creates and sends an envelope for embedded signing and
// returns the recipient view URL. The caller directs the signer's browser
// there; completion is observed later via status polling or the webhook.
func (s *Service) SendEmbedded(ctx context.Context, req *SignerRequest, presets []Preset, returnURL string, opts *SendOptions) (string, error) {
	if err := validateSigner(req.SignerName, req.SignerEmail); err != nil {
		return "", err
	}
	if err := required("signer tracking id", req.SignerID); err != nil {
		return "", err
	}
	if err := required("return url", returnURL); err != nil {
		return "", err
	}
	summary, err := s.create(ctx, []string{req.TemplateName},
		InlineSigner(req.SignerName, req.SignerEmail, req.RoleName, req.SignerID, TabsFromPresets(presets)),
		req.EmailSubject, req.EmailBlurb, opts)
	if err != nil {
		return "", err
	}
	req.EnvelopeID = summary.EnvelopeID
	req.DocumentID = firstDocumentID
	return s.recipientView(ctx, summary.EnvelopeID, req.SignerName, req.SignerEmail, req.SignerID, returnURL)
}

// SendEmail creates and sends an envelope routed to the signer by email and
// returns the envelope's initial status (typically "sent", not the eventual
// outcome). The recipient carries no client user ID: that is what routes the
// ceremony through email.
func (s *Service) SendEmail(ctx context.Context, req *SignerRequest, presets []Preset, opts *SendOptions) (string, error) {
	if err := validateSigner(req.SignerName, req.SignerEmail); err != nil {
		return "", err
	}
	summary, err := s.create(ctx, []string{req.TemplateName},
		InlineSigner(req.SignerName, req.SignerEmail, req.RoleName, "", TabsFromPresets(presets)),
		req.EmailSubject, req.EmailBlurb, opts)
	if err != nil {
		return "", err
	}
	req.EnvelopeID = summary.EnvelopeID
	req.DocumentID = firstDocumentID
	return summary.Status, nil
}

// SendPacketEmbedded is SendEmbedded over an ordered list of templates.
func (s *Service) SendPacketEmbedded(ctx context.Context, req *PacketRequest, presets []Preset, returnURL string, opts *SendOptions) (string, error) {
	if err := validateSigner(req.SignerName, req.SignerEmail); err != nil {
		return "", err
	}
	if err := required("signer tracking id", req.SignerID); err != nil {
		return "", err
	}
	if err := required("return url", returnURL); err != nil {
		return "", err
	}
	if len(req.TemplateNames) == 0 {
		return "", &ValidationError{Field: "template names"}
	}
	summary, err := s.create(ctx, req.TemplateNames,
		InlineSigner(req.SignerName, req.SignerEmail, req.RoleName, req.SignerID, TabsFromPresets(presets)),
		req.EmailSubject, req.EmailBlurb, opts)
	if err != nil {
		return "", err
	}
	req.EnvelopeID = summary.EnvelopeID
	req.DocumentID = firstDocumentID
	return s.recipientView(ctx, summary.EnvelopeID, req.SignerName, req.SignerEmail, req.SignerID, returnURL)
}

// SendPacketEmail is SendEmail over an ordered list of templates.
func (s *Service) SendPacketEmail(ctx context.Context, req *PacketRequest, presets []Preset, opts *SendOptions) (string, error) {
	if err := validateSigner(req.SignerName, req.SignerEmail); err != nil {
		return "", err
	}
	if len(req.TemplateNames) == 0 {
		return "", &ValidationError{Field: "template names"}
	}
	summary, err := s.create(ctx, req.TemplateNames,
		InlineSigner(req.SignerName, req.SignerEmail, req.RoleName, "", TabsFromPresets(presets)),
		req.EmailSubject, req.EmailBlurb, opts)
	if err != nil {
		return "", err
	}
	req.EnvelopeID = summary.EnvelopeID
	req.DocumentID = firstDocumentID
	return summary.Status, nil
}

// Resend re-delivers the envelope's notification email. Valid only while the
// envelope is in created, sent or delivered state; the server rejects other
// states. A 200 response carrying errorDetails still counts as a failure.
func (s *Service) Resend(ctx context.Context, envelopeID string) error {
	if err := required("envelope id", envelopeID); err != nil {
		return err
	}
	var result Summary
	path := "/envelopes/" + envelopeID + "?resend_envelope=true"
	if err := s.api.Do(ctx, "envelope.resend", http.MethodPut, path, struct{}{}, &result); err != nil {
		return err
	}
	if result.ErrorDetails != nil {
		return fmt.Errorf("envelope.resend: %s: %s", result.ErrorDetails.ErrorCode, result.ErrorDetails.Message)
	}
	return nil
}

// Void irreversibly cancels an in-flight envelope. A reason is mandatory;
// completed and draft envelopes cannot be voided.
func (s *Service) Void(ctx context.Context, envelopeID, reason string) error {
	if err := required("envelope id", envelopeID); err != nil {
		return err
	}
	if err := required("voided reason", reason); err != nil {
		return err
	}
	body := Definition{Status: "voided", VoidedReason: reason}
	var result Summary
	if err := s.api.Do(ctx, "envelope.void", http.MethodPut, "/envelopes/"+envelopeID, body, &result); err != nil {
		return err
	}
	if result.ErrorDetails != nil {
		return fmt.Errorf("envelope.void: %s: %s", result.ErrorDetails.ErrorCode, result.ErrorDetails.Message)
	}
	return nil
}

// BuildDefinition assembles the full envelope definition for the given
// ordered template list and inline signer. Exposed for the bulk-send path,
// which composes envelopes with placeholder recipients instead.
func (s *Service) BuildDefinition(ctx context.Context, templateNames []string, signer *Signer, subject, blurb string, opts *SendOptions) (*Definition, error) {
	cts := make([]CompositeTemplate, 0, len(templateNames))
	for i, name := range templateNames {
		if err := required("template name", name); err != nil {
			return nil, err
		}
		id, err := s.templates.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		cts = append(cts, BuildComposite(id, i+1, signer))
	}
	def := &Definition{
		EmailSubject:       subject,
		EmailBlurb:         blurb,
		Status:             "sent",
		CompositeTemplates: cts,
	}
	if opts != nil {
		def.Notification = BuildNotification(opts.Notification)
		hook, err := BuildEventNotification(opts.Hook)
		if err != nil {
			return nil, err
		}
		def.EventNotification = hook
		def.EnvelopeIDStamping = boolStr(opts.Stamping)
		def.AllowReassign = boolStr(opts.AllowReassign)
		def.EnableWetSign = boolStr(opts.EnableWetSign)
	}
	return def, nil
}

// --- internals ---

// firstDocumentID is the identifier assigned to the first (and for composite
// sends, only) document in the envelope.
const firstDocumentID = "1"

func (s *Service) create(ctx context.Context, templateNames []string, signer Signer, subject, blurb string, opts *SendOptions) (*Summary, error) {
	def, err := s.BuildDefinition(ctx, templateNames, &signer, subject, blurb, opts)
	if err != nil {
		return nil, err
	}
	var summary Summary
	if err := s.api.Do(ctx, "envelope.create", http.MethodPost, "/envelopes", def, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) recipientView(ctx context.Context, envelopeID, name, email, clientUserID, returnURL string) (string, error) {
	body := RecipientViewRequest{
		AuthenticationMethod: "none",
		ClientUserID:         clientUserID,
		UserName:             name,
		Email:                email,
		ReturnURL:            returnURL,
	}
	var view recipientView
	path := "/envelopes/" + envelopeID + "/views/recipient"
	if err := s.api.Do(ctx, "envelope.recipient_view", http.MethodPost, path, body, &view); err != nil {
		return "", err
	}
	return view.URL, nil
}

func validateSigner(name, email string) error {
	if err := required("signer name", name); err != nil {
		return err
	}
	return required("signer email", email)
}
