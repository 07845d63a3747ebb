// Command esign-demo sends one template through the email flow, polls its
// status, and prints an embedded-signing URL for the same signer. It is a
// smoke test against a live developer account, not a production tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/config"
	"ecar.org/esign/internal/envelope"
	"ecar.org/esign/internal/ids"
	"ecar.org/esign/internal/obs"
	"ecar.org/esign/internal/rest"
	"ecar.org/esign/internal/status"
	"ecar.org/esign/internal/template"
)

func main() {
	log.SetFlags(0)
	var (
		templateName = flag.String("template", "Consent Form", "Template name to send")
		signerName   = flag.String("name", "", "Signer full name")
		signerEmail  = flag.String("email", "", "Signer email")
		role         = flag.String("role", "Member", "Template role name")
		embedded     = flag.Bool("embedded", false, "Use the embedded flow and print the signing URL")
		returnURL    = flag.String("return-url", "https://localhost/signing-done", "Redirect after embedded signing")
	)
	flag.Parse()

	if *signerName == "" || *signerEmail == "" {
		log.Fatal("usage: esign-demo -name 'A B' -email a@b.com [-template ...] [-embedded]")
	}

	obs.Init()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	api := rest.New(cfg, auth.New(cfg))
	envelopes := envelope.NewService(api, template.NewResolver(api))
	queries := status.NewService(api)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req := &envelope.SignerRequest{
		SignerName:   *signerName,
		SignerEmail:  *signerEmail,
		TemplateName: *templateName,
		RoleName:     *role,
		EmailSubject: "Please sign: " + *templateName,
	}

	if *embedded {
		req.SignerID = ids.NewTracking()
		url, err := envelopes.SendEmbedded(ctx, req, nil, *returnURL, nil)
		if err != nil {
			log.Fatalf("send embedded: %v", err)
		}
		fmt.Printf("envelope %s created; open to sign:\n%s\n", req.EnvelopeID, url)
		return
	}

	st, err := envelopes.SendEmail(ctx, req, nil, nil)
	if err != nil {
		log.Fatalf("send email: %v", err)
	}
	fmt.Printf("envelope %s sent, initial status %q\n", req.EnvelopeID, st)

	info, err := queries.Envelope(ctx, req.EnvelopeID)
	if err != nil {
		log.Fatalf("envelope status: %v", err)
	}
	fmt.Printf("status=%s sent=%s\n", info.Status, info.SentDateTime)

	recipients, err := queries.Recipients(ctx, req.EnvelopeID)
	if err != nil {
		log.Fatalf("recipients: %v", err)
	}
	for _, r := range recipients {
		fmt.Printf("recipient %s <%s> status=%s\n", r.Name, r.Email, r.Status)
	}
}
