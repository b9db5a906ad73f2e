// Package httputil provides retry helpers for calls to remote rendering
// services.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark an
// error as transient by wrapping it with [Retryable]:
//
//   - Network errors
//   - 5xx server errors
//
// Everything else, including 4xx responses from a rendering service, is
// returned after the first attempt. The delay doubles after each attempt:
//
//	policy := httputil.Policy{Attempts: 3, Delay: 500 * time.Millisecond}
//	err := policy.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// A zero [Policy] performs exactly one attempt, which is what the renderer
// client uses unless configured otherwise.
package httputil
