// ABOUTME: Interceptor chaining for outbound HTTP round trippers
// ABOUTME: Applies interceptors in declaration order (first is outermost)

package transport

import "net/http"

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Interceptor wraps a round tripper with request/response policy
type Interceptor func(next http.RoundTripper) http.RoundTripper

// Chain applies interceptors to base in order.
// The first interceptor in the list is the outermost (executes first).
// Example: Chain(base, logging, creds) applies as: logging(creds(base))
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] != nil {
			rt = interceptors[i](rt)
		}
	}
	return rt
}
