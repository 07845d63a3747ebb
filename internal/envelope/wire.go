package envelope

// Vendor wire shapes for the eSignature REST API. Boolean-valued fields are
// strings ("true"/"false") on the wire; that quirk is the vendor's contract,
// not ours.

// Definition is the envelope create/update payload.
type Definition struct {
	EmailSubject       string              `json:"emailSubject,omitempty"`
	EmailBlurb         string              `json:"emailBlurb,omitempty"`
	Status             string              `json:"status,omitempty"`
	CompositeTemplates []CompositeTemplate `json:"compositeTemplates,omitempty"`
	Recipients         *Recipients         `json:"recipients,omitempty"`
	CustomFields       *CustomFields       `json:"customFields,omitempty"`
	Notification       *Notification       `json:"notification,omitempty"`
	EventNotification  *EventNotification  `json:"eventNotification,omitempty"`
	EnvelopeIDStamping string              `json:"envelopeIdStamping,omitempty"`
	AllowReassign      string              `json:"allowReassign,omitempty"`
	EnableWetSign      string              `json:"enableWetSign,omitempty"`
	VoidedReason       string              `json:"voidedReason,omitempty"`
}

// CompositeTemplate combines a server-stored template reference with inline
// recipient overrides.
type CompositeTemplate struct {
	CompositeTemplateID string           `json:"compositeTemplateId,omitempty"`
	ServerTemplates     []ServerTemplate `json:"serverTemplates,omitempty"`
	InlineTemplates     []InlineTemplate `json:"inlineTemplates,omitempty"`
}

type ServerTemplate struct {
	Sequence   string `json:"sequence"`
	TemplateID string `json:"templateId"`
}

type InlineTemplate struct {
	Sequence   string      `json:"sequence"`
	Recipients *Recipients `json:"recipients,omitempty"`
}

type Recipients struct {
	Signers      []Signer `json:"signers,omitempty"`
	CarbonCopies []Signer `json:"carbonCopies,omitempty"`
}

// Signer is a wire-level recipient. A non-empty ClientUserID marks the
// recipient as captive (embedded signing); email-routed recipients must not
// carry one.
type Signer struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	RecipientID  string `json:"recipientId,omitempty"`
	RoutingOrder string `json:"routingOrder,omitempty"`
	RoleName     string `json:"roleName,omitempty"`
	ClientUserID string `json:"clientUserId,omitempty"`
	Status       string `json:"status,omitempty"`
	Tabs         *Tabs  `json:"tabs,omitempty"`
}

// Tabs groups template fields by vendor type bucket.
type Tabs struct {
	CheckboxTabs  []CheckboxTab `json:"checkboxTabs,omitempty"`
	DateTabs      []Tab         `json:"dateTabs,omitempty"`
	SSNTabs       []Tab         `json:"ssnTabs,omitempty"`
	TextTabs      []Tab         `json:"textTabs,omitempty"`
	SignHereTabs  []Tab         `json:"signHereTabs,omitempty"`
	FirstNameTabs []Tab         `json:"firstNameTabs,omitempty"`
	LastNameTabs  []Tab         `json:"lastNameTabs,omitempty"`
	ListTabs      []Tab         `json:"listTabs,omitempty"`
}

// Tab is a value-bearing field placeholder.
type Tab struct {
	TabLabel   string `json:"tabLabel,omitempty"`
	Value      string `json:"value,omitempty"`
	Locked     string `json:"locked,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	Status     string `json:"status,omitempty"`
}

// CheckboxTab carries its state in "selected" rather than "value".
type CheckboxTab struct {
	TabLabel   string `json:"tabLabel,omitempty"`
	Selected   string `json:"selected,omitempty"`
	Locked     string `json:"locked,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
}

type Notification struct {
	UseAccountDefaults string       `json:"useAccountDefaults,omitempty"`
	Reminders          *Reminders   `json:"reminders,omitempty"`
	Expirations        *Expirations `json:"expirations,omitempty"`
}

type Reminders struct {
	ReminderEnabled   string `json:"reminderEnabled"`
	ReminderDelay     string `json:"reminderDelay,omitempty"`
	ReminderFrequency string `json:"reminderFrequency,omitempty"`
}

type Expirations struct {
	ExpireEnabled string `json:"expireEnabled"`
	ExpireAfter   string `json:"expireAfter,omitempty"`
	ExpireWarn    string `json:"expireWarn,omitempty"`
}

// EventNotification registers a webhook on the envelope.
type EventNotification struct {
	URL                            string          `json:"url"`
	RequireAcknowledgment          string          `json:"requireAcknowledgment"`
	LoggingEnabled                 string          `json:"loggingEnabled"`
	IncludeDocuments               string          `json:"includeDocuments"`
	IncludeDocumentFields          string          `json:"includeDocumentFields"`
	IncludeCertificateOfCompletion string          `json:"includeCertificateOfCompletion"`
	IncludeHMAC                    string          `json:"includeHMAC"`
	EnvelopeEvents                 []EnvelopeEvent `json:"envelopeEvents"`
	EventData                      *EventData      `json:"eventData"`
}

type EnvelopeEvent struct {
	EnvelopeEventStatusCode string `json:"envelopeEventStatusCode"`
}

type EventData struct {
	Version string `json:"version"`
	Format  string `json:"format"`
}

// CustomFields holds envelope-level metadata fields.
type CustomFields struct {
	TextCustomFields []TextCustomField `json:"textCustomFields,omitempty"`
	ListCustomFields []ListCustomField `json:"listCustomFields,omitempty"`
}

type TextCustomField struct {
	FieldID  string `json:"fieldId,omitempty"`
	Name     string `json:"name,omitempty"`
	Show     string `json:"show,omitempty"`
	Required string `json:"required,omitempty"`
	Value    string `json:"value,omitempty"`
}

type ListCustomField struct {
	FieldID string `json:"fieldId,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Summary is the envelope create/update response.
type Summary struct {
	EnvelopeID     string        `json:"envelopeId"`
	URI            string        `json:"uri"`
	Status         string        `json:"status"`
	StatusDateTime string        `json:"statusDateTime"`
	ErrorDetails   *ErrorDetails `json:"errorDetails,omitempty"`
}

// ErrorDetails is the vendor's in-band error object; a 200 response can
// still carry one.
type ErrorDetails struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// RecipientViewRequest asks for a short-lived embedded signing URL.
type RecipientViewRequest struct {
	AuthenticationMethod string `json:"authenticationMethod"`
	ClientUserID         string `json:"clientUserId"`
	UserName             string `json:"userName"`
	Email                string `json:"email"`
	ReturnURL            string `json:"returnUrl"`
}

type recipientView struct {
	URL string `json:"url"`
}
