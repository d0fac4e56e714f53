package models

import "sync"

// BatchRequest is the payload for POST /api/v1/batch/scrape.
type BatchRequest struct {
	// URLs is the list of product pages to scrape. Required.
	URLs []string `json:"urls" binding:"required,min=1"`

	// WebhookURL, if set, receives a batch.completed event when the job ends.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body (HMAC-SHA256).
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Succeeded int               `json:"succeeded"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}

// Batch job states.
const (
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
	BatchPartial    = "partial"
	BatchFailed     = "failed"
)

// BatchJob tracks an in-progress batch scrape operation.
// It is safe for concurrent use.
type BatchJob struct {
	ID        string
	Total     int
	CreatedAt int64 // unix timestamp

	mu        sync.Mutex
	status    string
	completed int
	succeeded int
	results   []*ScrapeResponse
}

// NewBatchJob creates a job in the processing state.
func NewBatchJob(id string, total int, createdAt int64) *BatchJob {
	return &BatchJob{
		ID:        id,
		Total:     total,
		CreatedAt: createdAt,
		status:    BatchProcessing,
		results:   make([]*ScrapeResponse, total),
	}
}

// Record stores the result for the URL at idx.
func (j *BatchJob) Record(idx int, resp *ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[idx] = resp
	j.completed++
	if resp.Success {
		j.succeeded++
	}
}

// Finish sets the terminal status from the success count and returns it.
func (j *BatchJob) Finish() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.succeeded == j.Total:
		j.status = BatchCompleted
	case j.succeeded == 0:
		j.status = BatchFailed
	default:
		j.status = BatchPartial
	}
	return j.status
}

// Snapshot returns a copy of the job's state for reporting.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*ScrapeResponse, len(j.results))
	copy(results, j.results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed,
		Succeeded: j.succeeded,
		Total:     j.Total,
		Results:   results,
	}
}
