// Package kb provides an HTTP client for the knowledge-base service.
//
// # Overview
//
// The service crawls a website ("scraping" or ingestion), builds a searchable
// knowledge base from it and answers questions against that base. This package
// wraps the four endpoints kbchat consumes and maps their payloads into Go
// types.
//
// # API Endpoints
//
//   - GET /status: ingestion and readiness flags plus optional progress
//   - GET /scrape: start whole-site ingestion
//   - POST /scrape_url: start ingestion of one URL ({"url": ...})
//   - POST /chat: ask a question ({"question": ...}), returns {"answer": ...}
//
// Non-2xx replies carry {"detail": ...}; the detail is preserved on the
// returned error so the UI can show it verbatim.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation, with a per-call deadline (status and scrape
//     calls use RequestTimeout, chat uses the longer ChatTimeout)
//   - Set Accept: application/json and User-Agent: kbchat/<version>
//   - Carry a fresh X-Request-ID that is also written to the debug log
//
// # Error Handling
//
// Every failure is an *Error with one of three kinds:
//
//   - KindTransport: connection refused, DNS, timeout
//   - KindProtocol: non-2xx status or a body that does not decode
//   - KindValidation: input rejected before any request was made
//
// Use IsTransport / IsProtocol / IsValidation to branch and UserMessage to
// obtain display text.
//
// # Observations
//
// Observation is the value handed to the coordinator after each status fetch:
// either Observed(snapshot) or the Unavailable(err) sentinel. Collapsing
// failures into a value keeps a single reconciliation path for callers.
package kb
