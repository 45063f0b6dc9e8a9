// Package httputil provides the HTTP client used by acknowledgment clients.
//
// # Overview
//
//   - [Client]: JSON requests against a brickguide server
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. [Client] marks
// these as retryable:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other status fails immediately:
//
//	c := httputil.NewClient("http://localhost:5000")
//	err := c.PostJSON(ctx, "/auto_acknowledge", ack, nil)
//
// # Configuration
//
// Default settings suit a gesture or voice client on the shop floor:
//
//   - Request timeout: 5 seconds
//   - Attempts: 3
//   - Base backoff: 250 milliseconds, doubling per retry
package httputil
