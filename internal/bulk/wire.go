package bulk

// Wire shapes for the bulk-send endpoints.

const (
	// trackingFieldName is the per-copy custom field correlating a bulk
	// copy back to the caller's tracking identifier.
	trackingFieldName = "recipientTrackingId"
	// mailingListFieldName is the envelope custom field the vendor requires
	// to pair a draft envelope with a sending list.
	mailingListFieldName = "mailingListId"
	// batchRefFieldName carries a per-batch reference for webhook
	// correlation.
	batchRefFieldName = "bulkBatchRef"
)

type sendingList struct {
	ListID     string     `json:"listId,omitempty"`
	Name       string     `json:"name"`
	BulkCopies []bulkCopy `json:"bulkCopies"`
}

type bulkCopy struct {
	EmailSubject string            `json:"emailSubject,omitempty"`
	EmailBlurb   string            `json:"emailBlurb,omitempty"`
	Recipients   []copyRecipient   `json:"recipients"`
	CustomFields []copyCustomField `json:"customFields,omitempty"`
}

type copyRecipient struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RoleName     string    `json:"roleName,omitempty"`
	ClientUserID string    `json:"clientUserId,omitempty"`
	Tabs         []copyTab `json:"tabs,omitempty"`
}

type copyTab struct {
	TabLabel     string `json:"tabLabel"`
	InitialValue string `json:"initialValue"`
}

type copyCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sendRequest struct {
	EnvelopeOrTemplateID string `json:"envelopeOrTemplateId"`
}

type sendResponse struct {
	BatchID              string `json:"batchId"`
	BatchName            string `json:"batchName"`
	BatchSize            string `json:"batchSize"`
	EnvelopeOrTemplateID string `json:"envelopeOrTemplateId"`
}

// BatchStatus is the read-only projection of a bulk batch.
type BatchStatus struct {
	BatchID        string `json:"batchId"`
	BatchName      string `json:"batchName"`
	BatchSize      string `json:"batchSize"`
	Queued         string `json:"queued"`
	Sent           string `json:"sent"`
	Failed         string `json:"failed"`
	SubmittedDate  string `json:"submittedDate"`
	MailingListID  string `json:"mailingListId"`
	OwnerUserID    string `json:"ownerUserId"`
	BulkErrorsInfo []struct {
		ErrorMessage string `json:"errorMessage"`
		Created      string `json:"created"`
	} `json:"bulkErrors,omitempty"`
}
