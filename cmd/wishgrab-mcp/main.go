package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/wishgrab/models"
)

func main() {
	apiURL := os.Getenv("WISHGRAB_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: only needed when the API runs with auth enabled.
	apiKey := os.Getenv("WISHGRAB_API_KEY")

	s := server.NewMCPServer(
		"wishgrab",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeProductTool := mcp.NewTool("scrape_product",
		mcp.WithDescription("Extract product details (name, price, description, images) from a retailer product page. Amazon, eBay and Walmart have dedicated extractors; other shops are read from Open Graph, schema.org and JSON-LD metadata."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL"),
		),
	)
	s.AddTool(scrapeProductTool, handleScrapeProduct(apiURL, apiKey))

	batchTool := mcp.NewTool("batch_scrape_products",
		mcp.WithDescription("Extract product details from several product pages at once."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Product page URLs"),
		),
	)
	s.AddTool(batchTool, handleBatchScrape(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiDo sends a request to the wishgrab API and returns the response body.
func apiDo(ctx context.Context, client *http.Client, method, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollBatch polls a batch until its status is no longer "processing" or ctx ends.
func pollBatch(ctx context.Context, client *http.Client, apiURL, apiKey, id string, every time.Duration) (*models.BatchStatusResponse, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := apiDo(ctx, client, http.MethodGet, apiURL, apiKey, "/api/v1/batch/"+id, nil)
			if err != nil {
				return nil, err
			}
			var status models.BatchStatusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}
			if status.Status != models.BatchProcessing {
				return &status, nil
			}
		}
	}
}

func handleScrapeProduct(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := apiDo(ctx, client, http.MethodPost, apiURL, apiKey, "/api/v1/scrape", models.ScrapeRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.ScrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(failureText(&resp)), nil
		}
		return mcp.NewToolResultText(formatProduct(&resp)), nil
	}
}

func handleBatchScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		body, err := apiDo(ctx, client, http.MethodPost, apiURL, apiKey, "/api/v1/batch/scrape", models.BatchRequest{URLs: urls})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}
		var created models.BatchResponse
		if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
			return mcp.NewToolResultError("batch job creation failed: " + strings.TrimSpace(string(body))), nil
		}

		status, err := pollBatch(ctx, client, apiURL, apiKey, created.ID, 2*time.Second)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Batch %s: %s (%d/%d succeeded)\n\n", status.ID, status.Status, status.Succeeded, status.Total)
		for i, r := range status.Results {
			if r == nil {
				continue
			}
			if r.Success {
				fmt.Fprintf(&sb, "--- [%d] ---\n%s\n", i+1, formatProduct(r))
			} else {
				fmt.Fprintf(&sb, "--- [%d] FAILED: %s ---\n\n", i+1, failureText(r))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func failureText(resp *models.ScrapeResponse) string {
	if resp.Error == nil {
		return "scrape failed"
	}
	return fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
}

// formatProduct renders a successful response as plain text.
func formatProduct(resp *models.ScrapeResponse) string {
	d := resp.Data
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", d.Name)
	if d.Price != nil {
		fmt.Fprintf(&sb, "Price: %.2f\n", *d.Price)
	}
	if d.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", d.Description)
	}
	if d.ImageURL != "" {
		fmt.Fprintf(&sb, "Image: %s\n", d.ImageURL)
	}
	for _, img := range d.Images {
		if img != d.ImageURL {
			fmt.Fprintf(&sb, "Also: %s\n", img)
		}
	}
	if resp.SourceURL != "" {
		fmt.Fprintf(&sb, "Source: %s\n", resp.SourceURL)
	}
	return sb.String()
}
