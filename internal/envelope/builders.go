package envelope

import (
	"fmt"
	"strconv"
	"strings"
)

// TabsFromPresets maps preset values into the vendor's field-type buckets,
// grouping same-typed presets into the single list the payload expects.
// Returns nil for an empty preset list. Presets with an unrecognized type are
// dropped.
func TabsFromPresets(presets []Preset) *Tabs {
	if len(presets) == 0 {
		return nil
	}
	tabs := &Tabs{}
	for _, p := range presets {
		switch p.Type {
		case PresetCheckbox:
			tabs.CheckboxTabs = append(tabs.CheckboxTabs, CheckboxTab{
				TabLabel: p.Label,
				Selected: p.Value,
				Locked:   boolStr(p.Locked),
			})
		case PresetDate:
			tabs.DateTabs = append(tabs.DateTabs, Tab{
				TabLabel: p.Label,
				Value:    p.Value,
				Locked:   boolStr(p.Locked),
			})
		case PresetSsn:
			tabs.SSNTabs = append(tabs.SSNTabs, Tab{
				TabLabel: p.Label,
				Value:    p.Value,
				Locked:   boolStr(p.Locked),
			})
		case PresetText:
			tabs.TextTabs = append(tabs.TextTabs, Tab{
				TabLabel: p.Label,
				Value:    p.Value,
				Locked:   boolStr(p.Locked),
			})
		}
	}
	if len(tabs.CheckboxTabs) == 0 && len(tabs.DateTabs) == 0 &&
		len(tabs.SSNTabs) == 0 && len(tabs.TextTabs) == 0 {
		return nil
	}
	return tabs
}

// InlineSigner builds the inline recipient block for a composite template.
// clientUserID is empty for email-routed signing.
func InlineSigner(name, email, role, clientUserID string, tabs *Tabs) Signer {
	return Signer{
		Name:         name,
		Email:        email,
		RecipientID:  "1",
		RoutingOrder: "1",
		RoleName:     role,
		ClientUserID: clientUserID,
		Tabs:         tabs,
	}
}

// BuildComposite wraps one server-side template reference with an optional
// inline recipient block. seq is the 1-based position of the document within
// the envelope.
func BuildComposite(templateID string, seq int, signer *Signer) CompositeTemplate {
	n := strconv.Itoa(seq)
	ct := CompositeTemplate{
		ServerTemplates: []ServerTemplate{{Sequence: n, TemplateID: templateID}},
	}
	if signer != nil {
		ct.InlineTemplates = []InlineTemplate{{
			Sequence:   n,
			Recipients: &Recipients{Signers: []Signer{*signer}},
		}}
	}
	return ct
}

// BuildNotification maps reminder/expiration settings to the vendor struct.
// Returns nil when no options are supplied.
func BuildNotification(o *NotificationOptions) *Notification {
	if o == nil {
		return nil
	}
	n := &Notification{UseAccountDefaults: "false"}
	if o.UseReminders {
		n.Reminders = &Reminders{
			ReminderEnabled:   "true",
			ReminderDelay:     strconv.Itoa(o.ReminderDelayDays),
			ReminderFrequency: strconv.Itoa(o.ReminderFreqDays),
		}
	} else {
		n.Reminders = &Reminders{ReminderEnabled: "false"}
	}
	if o.UseExpiration {
		n.Expirations = &Expirations{
			ExpireEnabled: "true",
			ExpireAfter:   strconv.Itoa(o.ExpireAfterDays),
			ExpireWarn:    strconv.Itoa(o.ExpireWarnDays),
		}
	} else {
		n.Expirations = &Expirations{ExpireEnabled: "false"}
	}
	return n
}

// recognizedEvents is the fixed set of deliverable lifecycle events.
var recognizedEvents = map[Event]string{
	EventDraft:     "Draft",
	EventSent:      "Sent",
	EventDelivered: "Delivered",
	EventCompleted: "Completed",
	EventDeclined:  "Declined",
	EventVoided:    "Voided",
}

// BuildEventNotification validates the requested lifecycle events and builds
// the webhook registration with fixed delivery options: no certificate, no
// documents or fields, HMAC signature on, acknowledgment required, JSON
// payloads in the versioned schema.
func BuildEventNotification(h *HookOptions) (*EventNotification, error) {
	if h == nil {
		return nil, nil
	}
	if err := required("webhook url", h.URL); err != nil {
		return nil, err
	}
	events := make([]EnvelopeEvent, 0, len(h.Events))
	for _, ev := range h.Events {
		code, ok := recognizedEvents[Event(strings.ToLower(string(ev)))]
		if !ok {
			return nil, &ValidationError{
				Field:  "envelope events",
				Reason: fmt.Sprintf("unrecognized event %q", string(ev)),
			}
		}
		events = append(events, EnvelopeEvent{EnvelopeEventStatusCode: code})
	}
	return &EventNotification{
		URL:                            h.URL,
		RequireAcknowledgment:          "true",
		LoggingEnabled:                 "true",
		IncludeDocuments:               "false",
		IncludeDocumentFields:          "false",
		IncludeCertificateOfCompletion: "false",
		IncludeHMAC:                    "true",
		EnvelopeEvents:                 events,
		EventData:                      &EventData{Version: "restv2.1", Format: "json"},
	}, nil
}
