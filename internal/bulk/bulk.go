package bulk

import (
	"ecar.org/esign/internal/envelope"
)

// Recipient is the accessor contract shared by the two bulk recipient
// shapes. Bulk send always targets embedded-capable recipients: a tracking
// identifier is mandatory for every entry.
type Recipient interface {
	Name() string
	Email() string
	TrackingID() string
	Role() string
	Presets() []envelope.Preset
	Subject() string
	Blurb() string
}

// SingleRecipient is one entry in a single-template batch.
type SingleRecipient struct {
	SignerName   string
	SignerEmail  string
	SignerID     string
	RoleName     string
	PresetFields []envelope.Preset
	EmailSubject string
	EmailBlurb   string
}

func (r SingleRecipient) Name() string { return r.SignerName }
func (r SingleRecipient) Email() string { return r.SignerEmail }
func (r SingleRecipient) TrackingID() string { return r.SignerID }
func (r SingleRecipient) Role() string { return r.RoleName }
func (r SingleRecipient) Presets() []envelope.Preset { return r.PresetFields }
func (r SingleRecipient) Subject() string { return r.EmailSubject }
func (r SingleRecipient) Blurb() string { return r.EmailBlurb }

// PacketRecipient is one entry in a multi-template packet batch. The preset
// values are broadcast to every document in the packet.
type PacketRecipient struct {
	SignerName   string
	SignerEmail  string
	SignerID     string
	RoleName     string
	PresetFields []envelope.Preset
	EmailSubject string
	EmailBlurb   string
}

func (r PacketRecipient) Name() string { return r.SignerName }
func (r PacketRecipient) Email() string { return r.SignerEmail }
func (r PacketRecipient) TrackingID() string { return r.SignerID }
func (r PacketRecipient) Role() string { return r.RoleName }
func (r PacketRecipient) Presets() []envelope.Preset { return r.PresetFields }
func (r PacketRecipient) Subject() string { return r.EmailSubject }
func (r PacketRecipient) Blurb() string { return r.EmailBlurb }

// Request describes one bulk batch. ListID and BatchID are filled in only
// after the corresponding submission phase completes.
type Request struct {
	BatchName    string
	EmailSubject string
	EmailBlurb   string

	// TemplateName targets single-template batches; TemplateNames takes
	// precedence when set and produces packet envelopes.
	TemplateName  string
	TemplateNames []string

	Recipients []Recipient

	ListID  string
	BatchID string
}

func (r *Request) templates() []string {
	if len(r.TemplateNames) > 0 {
		return r.TemplateNames
	}
	return []string{r.TemplateName}
}
