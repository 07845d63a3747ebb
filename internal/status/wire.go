package status

// Read-model projections. All timestamps are the vendor's ISO-8601 strings
// passed through unparsed.

// EnvelopeInfo is the envelope snapshot.
type EnvelopeInfo struct {
	EnvelopeID            string `json:"envelopeId"`
	Status                string `json:"status"`
	EmailSubject          string `json:"emailSubject"`
	EmailBlurb            string `json:"emailBlurb"`
	CreatedDateTime       string `json:"createdDateTime"`
	SentDateTime          string `json:"sentDateTime"`
	DeliveredDateTime     string `json:"deliveredDateTime"`
	CompletedDateTime     string `json:"completedDateTime"`
	DeclinedDateTime      string `json:"declinedDateTime"`
	StatusChangedDateTime string `json:"statusChangedDateTime"`
	ExpireDateTime        string `json:"expireDateTime"`
	ExpireEnabled         string `json:"expireEnabled"`
	ExpireAfter           string `json:"expireAfter"`
	VoidedDateTime        string `json:"voidedDateTime"`
	VoidedReason          string `json:"voidedReason"`
}

// RecipientInfo is one signer's progress snapshot.
type RecipientInfo struct {
	RecipientID       string `json:"recipientId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	RoleName          string `json:"roleName"`
	ClientUserID      string `json:"clientUserId"`
	Status            string `json:"status"`
	DeliveredDateTime string `json:"deliveredDateTime"`
	SignedDateTime    string `json:"signedDateTime"`
	DeclinedDateTime  string `json:"declinedDateTime"`
	DeclinedReason    string `json:"declinedReason"`
}

type recipientsResponse struct {
	Signers []RecipientInfo `json:"signers"`
}

// DocumentInfo is one document entry from the envelope's document list.
type DocumentInfo struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URI        string `json:"uri"`
}

type documentsResponse struct {
	EnvelopeID string         `json:"envelopeId"`
	Documents  []DocumentInfo `json:"envelopeDocuments"`
}
