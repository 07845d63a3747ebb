// Command esign-bulk submits a bulk batch from a CSV of recipients and
// polls the batch counters until the vendor reports everything sent or
// failed.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"ecar.org/esign/internal/auth"
	"ecar.org/esign/internal/bulk"
	"ecar.org/esign/internal/config"
	"ecar.org/esign/internal/envelope"
	"ecar.org/esign/internal/ids"
	"ecar.org/esign/internal/obs"
	"ecar.org/esign/internal/rest"
	"ecar.org/esign/internal/template"
)

func main() {
	log.SetFlags(0)
	var (
		templateName = flag.String("template", "", "Template name to send (comma-separate for a packet)")
		csvPath      = flag.String("recipients", "", "CSV of name,email[,role] rows")
		batchPrefix  = flag.String("batch", "demo", "Batch name prefix")
		subject      = flag.String("subject", "Please sign", "Email subject")
		poll         = flag.Duration("poll", 10*time.Second, "Batch status poll interval")
	)
	flag.Parse()

	if *templateName == "" || *csvPath == "" {
		log.Fatal("usage: esign-bulk -template 'Consent Form' -recipients people.csv")
	}

	obs.Init()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	api := rest.New(cfg, auth.New(cfg))
	envelopes := envelope.NewService(api, template.NewResolver(api))
	sender := bulk.NewService(api, envelopes)

	recipients, err := readRecipients(*csvPath)
	if err != nil {
		log.Fatalf("read recipients: %v", err)
	}

	req := &bulk.Request{
		BatchName:    ids.NewBatchName(*batchPrefix),
		EmailSubject: *subject,
		Recipients:   recipients,
	}
	names := strings.Split(*templateName, ",")
	if len(names) > 1 {
		req.TemplateNames = names
	} else {
		req.TemplateName = names[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := sender.Send(ctx, req, nil); err != nil {
		log.Fatalf("bulk send: %v", err)
	}
	fmt.Printf("batch %s submitted: list=%s batch=%s\n", req.BatchName, req.ListID, req.BatchID)

	for {
		st, err := sender.Status(ctx, req.BatchID)
		if err != nil {
			log.Fatalf("batch status: %v", err)
		}
		fmt.Printf("queued=%s sent=%s failed=%s of %s\n", st.Queued, st.Sent, st.Failed, st.BatchSize)
		if st.Queued == "0" || st.Queued == "" {
			for _, e := range st.BulkErrorsInfo {
				fmt.Printf("error: %s (%s)\n", e.ErrorMessage, e.Created)
			}
			return
		}
		select {
		case <-ctx.Done():
			log.Fatalf("poll: %v", ctx.Err())
		case <-time.After(*poll):
		}
	}
}

func readRecipients(path string) ([]bulk.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []bulk.Recipient
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("row needs at least name,email: %v", rec)
		}
		role := "Member"
		if len(rec) > 2 && rec[2] != "" {
			role = rec[2]
		}
		out = append(out, bulk.SingleRecipient{
			SignerName:  rec[0],
			SignerEmail: rec[1],
			SignerID:    ids.NewTracking(),
			RoleName:    role,
		})
	}
	return out, nil
}
