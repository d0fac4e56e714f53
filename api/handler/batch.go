package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/wishgrab/config"
	"github.com/use-agent/wishgrab/models"
	"github.com/use-agent/wishgrab/scraper"
	"github.com/use-agent/wishgrab/webhook"
)

// batchTTL is how long finished and running jobs stay queryable.
const batchTTL = time.Hour

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than batchTTL.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			expireBatches(time.Now().Add(-batchTTL).Unix())
		}
	}()
}

func expireBatches(cutoff int64) {
	batchStore.Range(func(key, value any) bool {
		if value.(*models.BatchJob).CreatedAt < cutoff {
			batchStore.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/batch/scrape.
// It creates a job and scrapes its URLs in the background, at most
// cfg.Concurrency at a time.
func PostBatch(sc *scraper.Scraper, cfg config.BatchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}

		if cfg.MaxURLs > 0 && len(req.URLs) > cfg.MaxURLs {
			invalidInput(c, fmt.Sprintf("maximum %d URLs per batch", cfg.MaxURLs))
			return
		}

		job := models.NewBatchJob("batch-"+uuid.NewString(), len(req.URLs), time.Now().Unix())
		batchStore.Store(job.ID, job)

		go runBatch(sc, cfg.Concurrency, job, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: models.BatchProcessing,
			Total:  job.Total,
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := batchStore.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		c.JSON(http.StatusOK, val.(*models.BatchJob).Snapshot())
	}
}

// runBatch scrapes every URL of the job with bounded concurrency, then
// notifies the webhook if one was given.
func runBatch(sc *scraper.Scraper, concurrency int, job *models.BatchJob, req models.BatchRequest) {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			rec := sc.ScrapeProductURL(context.Background(), targetURL)
			resp := models.NewScrapeResponse(rec)
			resp.Timing = models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
			job.Record(idx, resp)
		}(i, rawURL)
	}
	wg.Wait()

	status := job.Finish()
	snapshot := job.Snapshot()
	slog.Info("batch job finished",
		"id", job.ID,
		"status", status,
		"succeeded", snapshot.Succeeded,
		"total", job.Total,
	)

	if req.WebhookURL != "" {
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      webhook.EventBatchCompleted,
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      snapshot,
		})
	}
}
