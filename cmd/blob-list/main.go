// Command blob-list enumerates an Azure Blob container through the List
// Blobs REST API using a container SAS URL.
package main

import (
	"context"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

type enumerationResults struct {
	Blobs struct {
		Blob []struct {
			Name       string `xml:"Name"`
			Properties struct {
				LastModified  string `xml:"Last-Modified"`
				ContentLength int64  `xml:"Content-Length"`
				ContentType   string `xml:"Content-Type"`
			} `xml:"Properties"`
		} `xml:"Blob"`
	} `xml:"Blobs"`
	NextMarker string `xml:"NextMarker"`
}

func main() {
	log.SetFlags(0)
	var (
		sasURL = flag.String("sas", os.Getenv("AZURE_CONTAINER_SAS"), "Container SAS URL")
		prefix = flag.String("prefix", "", "Blob name prefix filter")
	)
	flag.Parse()

	if *sasURL == "" {
		log.Fatal("missing SAS URL: provide via -sas or AZURE_CONTAINER_SAS")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	marker := ""
	total := 0
	for {
		page, err := listPage(ctx, *sasURL, *prefix, marker)
		if err != nil {
			log.Fatalf("list blobs: %v", err)
		}
		for _, b := range page.Blobs.Blob {
			fmt.Printf("%-12d %-30s %s\n", b.Properties.ContentLength, b.Properties.LastModified, b.Name)
			total++
		}
		if page.NextMarker == "" {
			break
		}
		marker = page.NextMarker
	}
	fmt.Printf("%d blobs\n", total)
}

func listPage(ctx context.Context, sasURL, prefix, marker string) (*enumerationResults, error) {
	u, err := url.Parse(sasURL)
	if err != nil {
		return nil, fmt.Errorf("parse SAS URL: %w", err)
	}
	q := u.Query()
	q.Set("restype", "container")
	q.Set("comp", "list")
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if marker != "" {
		q.Set("marker", marker)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage returned %d: %s", resp.StatusCode, body)
	}

	var page enumerationResults
	if err := xml.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &page, nil
}
