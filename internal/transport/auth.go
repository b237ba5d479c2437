// ABOUTME: Credential-stamping and session-expiry interceptors
// ABOUTME: Attach bearer token + locale on the way out, force logout on 401/422 on the way in

package transport

import (
	"net/http"
)

// ExpiredMessage is the session message set when the backend rejects the token
const ExpiredMessage = "Login session expired"

// TokenSource supplies the current bearer token and can collapse a stale session
type TokenSource interface {
	Token() string
	Logout()
}

// LocaleSource supplies the active language code
type LocaleSource interface {
	Locale() string
}

// Expirer invalidates the session with a user-facing message
type Expirer interface {
	Expire(message string)
}

// Credentials stamps every request with the bearer token and Accept-Language.
// With no token the session is logged out and the request proceeds without
// an Authorization header so the backend rejects it.
func Credentials(tokens TokenSource, locales LocaleSource) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())

			// Only the explicit header carries credentials
			r.Header.Del("Cookie")
			r.Header.Del("Authorization")

			if token := tokens.Token(); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			} else {
				tokens.Logout()
			}

			r.Header.Set("Accept-Language", locales.Locale())
			return next.RoundTrip(r)
		})
	}
}

// ExpireOnReject passes every response through unchanged. A 401 or 422 also
// expires the session; the caller still receives the rejected response.
func ExpireOnReject(sessions Expirer) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil {
				return nil, err
			}
			if IsRejection(resp.StatusCode) {
				sessions.Expire(ExpiredMessage)
			}
			return resp, nil
		})
	}
}

// IsRejection reports whether status means the credential was refused
func IsRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity
}
