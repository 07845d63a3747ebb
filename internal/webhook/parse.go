// Package webhook parses Connect notification payloads. Parsing is a pure
// function of the payload bytes: no state is read or written, so parsing the
// same bytes twice yields structurally equal notices.
package webhook

import (
	"encoding/json"
	"fmt"
)

// Notice is the flattened local model of one envelope notification.
// Timestamps are the vendor's strings passed through unparsed.
type Notice struct {
	Event      string
	EnvelopeID string
	AccountID  string

	Status       string
	EmailSubject string
	EmailBlurb   string

	CreatedDateTime   string
	SentDateTime      string
	DeliveredDateTime string
	CompletedDateTime string
	DeclinedDateTime  string
	VoidedDateTime    string

	ExpireEnabled  string
	ExpireAfter    string
	ExpireDateTime string

	// Fields maps custom-field labels to values, merged from the payload's
	// list-type and text-type arrays. On a label collision the text entry
	// wins.
	Fields map[string]string
}

// Wire shape of the JSON (v2.1) Connect payload.
type payload struct {
	Event string `json:"event"`
	Data  struct {
		AccountID       string `json:"accountId"`
		EnvelopeID      string `json:"envelopeId"`
		EnvelopeSummary struct {
			Status            string `json:"status"`
			EmailSubject      string `json:"emailSubject"`
			EmailBlurb        string `json:"emailBlurb"`
			CreatedDateTime   string `json:"createdDateTime"`
			SentDateTime      string `json:"sentDateTime"`
			DeliveredDateTime string `json:"deliveredDateTime"`
			CompletedDateTime string `json:"completedDateTime"`
			DeclinedDateTime  string `json:"declinedDateTime"`
			VoidedDateTime    string `json:"voidedDateTime"`
			ExpireEnabled     string `json:"expireEnabled"`
			ExpireAfter       string `json:"expireAfter"`
			ExpireDateTime    string `json:"expireDateTime"`
			CustomFields      struct {
				ListCustomFields []customField `json:"listCustomFields"`
				TextCustomFields []customField `json:"textCustomFields"`
			} `json:"customFields"`
		} `json:"envelopeSummary"`
	} `json:"data"`
}

type customField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParsePayload decodes a Connect notification body into a Notice.
func ParsePayload(body []byte) (*Notice, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("webhook: parse payload: %w", err)
	}
	if p.Data.EnvelopeID == "" {
		return nil, fmt.Errorf("webhook: payload has no envelope id")
	}

	sum := p.Data.EnvelopeSummary
	n := &Notice{
		Event:             p.Event,
		EnvelopeID:        p.Data.EnvelopeID,
		AccountID:         p.Data.AccountID,
		Status:            sum.Status,
		EmailSubject:      sum.EmailSubject,
		EmailBlurb:        sum.EmailBlurb,
		CreatedDateTime:   sum.CreatedDateTime,
		SentDateTime:      sum.SentDateTime,
		DeliveredDateTime: sum.DeliveredDateTime,
		CompletedDateTime: sum.CompletedDateTime,
		DeclinedDateTime:  sum.DeclinedDateTime,
		VoidedDateTime:    sum.VoidedDateTime,
		ExpireEnabled:     sum.ExpireEnabled,
		ExpireAfter:       sum.ExpireAfter,
		ExpireDateTime:    sum.ExpireDateTime,
		Fields:            map[string]string{},
	}
	for _, f := range sum.CustomFields.ListCustomFields {
		if f.Name != "" {
			n.Fields[f.Name] = f.Value
		}
	}
	for _, f := range sum.CustomFields.TextCustomFields {
		if f.Name != "" {
			n.Fields[f.Name] = f.Value
		}
	}
	return n, nil
}
