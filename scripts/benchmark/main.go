package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/wishgrab/models"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "wishgrab API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Product pages covering every strategy plus the unsupported path.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Amazon", "https://www.amazon.com/dp/B08N5WRWNW"},
	{"eBay", "https://www.ebay.com/itm/266491536540"},
	{"Walmart", "https://www.walmart.com/ip/5036182893"},
	{"Generic", "https://www.rei.com/product/204109/rei-co-op-flash-22-pack"},
	{"Shopify", "https://www.allbirds.com/products/mens-wool-runners"},
	{"Etsy", "https://www.etsy.com/listing/1000000000"},
}

// --- Benchmark result types ---

type runResult struct {
	Run            int    `json:"run"`
	TotalMs        int64  `json:"total_ms"`
	HTTPStatus     int    `json:"http_status"`
	Strategy       string `json:"strategy,omitempty"`
	FetchedVia     string `json:"fetched_via,omitempty"`
	HasPrice       bool   `json:"has_price"`
	HasDescription bool   `json:"has_description"`
	ImageCount     int    `json:"image_count"`
	Success        bool   `json:"success"`
	ErrorCode      string `json:"error_code,omitempty"`
	Error          string `json:"error,omitempty"`
}

type urlSummary struct {
	SuccessRate     float64 `json:"success_rate"`
	AvgTotalMs      float64 `json:"avg_total_ms"`
	PriceRate       float64 `json:"price_rate"`
	DescriptionRate float64 `json:"description_rate"`
	AvgImages       float64 `json:"avg_images"`
}

type urlResult struct {
	URL     string      `json:"url"`
	Label   string      `json:"label"`
	Runs    []runResult `json:"runs"`
	Summary urlSummary  `json:"summary"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== wishgrab Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure wishgrab is running (go run ./cmd/wishgrab)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  via %s (%s)\n", rr.TotalMs, rr.FetchedVia, rr.Strategy)
			} else {
				fmt.Printf("FAILED: [%s] %s\n", rr.ErrorCode, rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Summary = summarize(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ScrapeRequest{URL: url})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.HTTPStatus = resp.StatusCode

	var sr models.ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.TotalMs = sr.Timing.TotalMs
	rr.Strategy = sr.Strategy
	rr.FetchedVia = sr.FetchedVia
	if sr.Data != nil {
		rr.HasPrice = sr.Data.Price != nil
		rr.HasDescription = sr.Data.Description != ""
		rr.ImageCount = len(sr.Data.Images)
	}
	if sr.Error != nil {
		rr.ErrorCode = sr.Error.Code
		rr.Error = sr.Error.Message
	}
	return rr
}

func summarize(runs []runResult) urlSummary {
	var s urlSummary
	if len(runs) == 0 {
		return s
	}

	var ok int
	for _, r := range runs {
		if !r.Success {
			continue
		}
		ok++
		s.AvgTotalMs += float64(r.TotalMs)
		s.AvgImages += float64(r.ImageCount)
		if r.HasPrice {
			s.PriceRate++
		}
		if r.HasDescription {
			s.DescriptionRate++
		}
	}

	s.SuccessRate = float64(ok) / float64(len(runs)) * 100
	if ok == 0 {
		return s
	}
	n := float64(ok)
	s.AvgTotalMs /= n
	s.AvgImages /= n
	s.PriceRate = s.PriceRate / n * 100
	s.DescriptionRate = s.DescriptionRate / n * 100
	return s
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 95))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Site\tURL\tSuccess\tAvg Latency\tPrice\tDescription\tImages\tVia\n")
	fmt.Fprintf(w, "────\t───\t───────\t───────────\t─────\t───────────\t──────\t───\n")

	for _, r := range results {
		if r.Summary.SuccessRate == 0 {
			fmt.Fprintf(w, "%s\t%s\t0%%\t-\t-\t-\t-\t%s\n", r.Label, truncateURL(r.URL, 40), lastErrorCode(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%dms\t%.0f%%\t%.0f%%\t%.1f\t%s\n",
			r.Label,
			truncateURL(r.URL, 40),
			r.Summary.SuccessRate,
			int64(r.Summary.AvgTotalMs),
			r.Summary.PriceRate,
			r.Summary.DescriptionRate,
			r.Summary.AvgImages,
			dominantTransport(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 95))
}

// dominantTransport returns the transport that served most successful runs.
func dominantTransport(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.FetchedVia]++
		}
	}
	best, bestCount := "-", 0
	for via, count := range counts {
		if count > bestCount || (count == bestCount && via < best) {
			best = via
			bestCount = count
		}
	}
	return best
}

func lastErrorCode(runs []runResult) string {
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].ErrorCode != "" {
			return runs[i].ErrorCode
		}
	}
	return "-"
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
