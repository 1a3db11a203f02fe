package kb

import "fmt"

// StatusResponse mirrors the payload returned by /status.
type StatusResponse struct {
	ScrapingInProgress bool      `json:"scraping_in_progress"`
	ChatbotReady       bool      `json:"chatbot_ready"`
	Progress           *Progress `json:"progress,omitempty"`
}

// Progress reports how far the running ingestion job has crawled.
type Progress struct {
	PagesScraped int `json:"pages_scraped"`
	TotalPages   int `json:"total_pages"`
}

// String renders progress as "N of M".
func (p *Progress) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d of %d", p.PagesScraped, p.TotalPages)
}

// Fraction returns completion in [0,1]; zero when the total is unknown.
func (p *Progress) Fraction() float64 {
	if p == nil || p.TotalPages <= 0 {
		return 0
	}
	f := float64(p.PagesScraped) / float64(p.TotalPages)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Snapshot is one observation of remote job and readiness state.
type Snapshot struct {
	ScrapingInProgress bool
	ChatbotReady       bool
	Progress           *Progress
}

// Snapshot converts the wire payload, copying progress so callers never share it.
func (r StatusResponse) Snapshot() Snapshot {
	snap := Snapshot{
		ScrapingInProgress: r.ScrapingInProgress,
		ChatbotReady:       r.ChatbotReady,
	}
	if r.Progress != nil {
		p := *r.Progress
		snap.Progress = &p
	}
	return snap
}

// Observation is either an available snapshot or the Unavailable sentinel.
// The zero value is Unavailable with no cause, which is what a client that has
// not fetched anything yet knows.
type Observation struct {
	snapshot  Snapshot
	available bool
	err       error
}

// Observed wraps a successfully fetched snapshot.
func Observed(s Snapshot) Observation {
	return Observation{snapshot: s, available: true}
}

// Unavailable builds the sentinel returned when a status fetch fails.
func Unavailable(err error) Observation {
	return Observation{err: err}
}

// Available reports whether the observation carries a snapshot.
func (o Observation) Available() bool { return o.available }

// Snapshot returns the observed snapshot; ok is false for Unavailable.
func (o Observation) Snapshot() (Snapshot, bool) {
	return o.snapshot, o.available
}

// Err returns the failure behind an Unavailable observation.
func (o Observation) Err() error { return o.err }

// ScrapeResponse mirrors /scrape and /scrape_url replies.
type ScrapeResponse struct {
	Message string `json:"message"`
}

// ScrapeURLRequest is the body of POST /scrape_url.
type ScrapeURLRequest struct {
	URL string `json:"url"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse mirrors a successful /chat reply.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// errorBody is the FastAPI-style error envelope returned on non-2xx.
type errorBody struct {
	Detail string `json:"detail"`
}
