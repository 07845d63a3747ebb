package envelope

import "fmt"

// PresetType tags a preset field value with its template field type.
type PresetType int

const (
	PresetText PresetType = iota
	PresetDate
	PresetSsn
	PresetCheckbox
)

// Preset is a field value stamped onto the template before signing. Locked
// presets cannot be edited by the recipient at signing time.
type Preset struct {
	Label  string
	Value  string
	Type   PresetType
	Locked bool
}

// SignerRequest describes one signing request against one template. A
// non-empty SignerID routes the request through the embedded signing flow;
// an empty one routes it through email. EnvelopeID and DocumentID are filled
// in by the library after submission.
type SignerRequest struct {
	SignerName   string
	SignerEmail  string
	SignerID     string
	TemplateName string
	RoleName     string
	EmailSubject string
	EmailBlurb   string

	EnvelopeID string
	DocumentID string
}

// PacketRequest is a SignerRequest over an ordered list of templates,
// producing a multi-document envelope. The signer answers the preset fields
// once; values are broadcast to every document.
type PacketRequest struct {
	SignerName    string
	SignerEmail   string
	SignerID      string
	TemplateNames []string
	RoleName      string
	EmailSubject  string
	EmailBlurb    string

	EnvelopeID string
	DocumentID string
}

// NotificationOptions controls reminder and expiration behaviour. Attached to
// an envelope only when supplied.
type NotificationOptions struct {
	UseReminders      bool
	ReminderDelayDays int
	ReminderFreqDays  int

	UseExpiration   bool
	ExpireAfterDays int
	ExpireWarnDays  int
}

// Event is an envelope lifecycle event deliverable to a webhook.
type Event string

const (
	EventDraft     Event = "draft"
	EventSent      Event = "sent"
	EventDelivered Event = "delivered"
	EventCompleted Event = "completed"
	EventDeclined  Event = "declined"
	EventVoided    Event = "voided"
)

// HookOptions registers a webhook for the chosen lifecycle events.
type HookOptions struct {
	URL    string
	Events []Event
}

// SendOptions carries the optional envelope-level settings shared by every
// send operation.
type SendOptions struct {
	Notification *NotificationOptions
	Hook         *HookOptions

	// Envelope flags: ID stamping on documents, recipient reassignment,
	// print-and-sign (wet signature) fallback.
	Stamping      bool
	AllowReassign bool
	EnableWetSign bool
}

// ValidationError reports a missing or malformed argument, detected before
// any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field}
	}
	return nil
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
