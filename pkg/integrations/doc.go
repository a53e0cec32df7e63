// Package integrations provides the shared HTTP client used by API clients.
//
// [Client] wraps net/http with:
//   - default headers (User-Agent, Accept, Authorization)
//   - response caching through [cache.Cache]
//   - retry of transient failures via [httputil.Retry]
//   - optional per-host rate limiting via [httputil.HostLimiter]
//   - observability HTTP and cache hooks
//
// Status codes are classified in one place. 404 maps to [ErrNotFound];
// 403 and 429 map to [ErrRateLimited] (429 with Retry-After is retried);
// 5xx maps to a retryable [ErrNetwork]; anything else is a [StatusError]
// wrapping ErrNetwork.
//
// The [github] subpackage builds on Client to list repository trees and
// fetch file contents.
package integrations
