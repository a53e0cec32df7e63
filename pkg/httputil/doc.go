// Package httputil provides HTTP plumbing shared by the GitHub client.
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError].
// Transient failures worth retrying are network errors, 5xx responses, and
// 429 responses. The delay doubles after each attempt; a RetryableError that
// carries a server-supplied After duration (from a Retry-After header) waits
// at least that long.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// # Rate limiting
//
// [HostLimiter] keeps one token bucket per host so concurrent fetch workers
// share a request budget against api.github.com.
package httputil
