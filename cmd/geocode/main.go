// Command geocode resolves a street address to coordinates through the
// Google Geocoding API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

const endpoint = "https://maps.googleapis.com/maps/api/geocode/json"

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

func main() {
	log.SetFlags(0)
	var (
		address = flag.String("address", "", "Address to geocode")
		apiKey  = flag.String("key", os.Getenv("GOOGLE_MAPS_API_KEY"), "API key")
	)
	flag.Parse()

	if *address == "" {
		log.Fatal("usage: geocode -address '1600 Amphitheatre Pkwy, Mountain View, CA'")
	}
	if *apiKey == "" {
		log.Fatal("missing API key: provide via -key or GOOGLE_MAPS_API_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	q := url.Values{}
	q.Set("address", *address)
	q.Set("key", *apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("geocode: %v", err)
	}
	defer resp.Body.Close()

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	if out.Status != "OK" {
		log.Fatalf("geocoder status %s: %s", out.Status, out.ErrorMessage)
	}

	for _, r := range out.Results {
		fmt.Printf("%.7f,%.7f  %s  (%s)\n",
			r.Geometry.Location.Lat, r.Geometry.Location.Lng,
			r.FormattedAddress, r.Geometry.LocationType)
	}
}
