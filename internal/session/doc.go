// ABOUTME: Package documentation for the client session store
// ABOUTME: Describes ownership of the bearer token and the single-flight rule

// Package session owns the client's authenticated identity.
//
// A Store holds the bearer token in memory and mirrors it to the persistence
// surface under the authToken key so it survives restarts. The token is the
// only authentication signal: a session is authenticated exactly when the
// token is non-empty. The store never holds an empty-but-present token.
//
// Login and Exchange are the only operations that contact the network. They
// are serialized per store, and identical concurrent attempts share a single
// round trip, so overlapping navigations cannot interleave token writes. The
// shared round trip ignores caller cancellation; each caller stops waiting
// when its own context ends. Loading is set only while a credential login is
// in flight, never during an auth key exchange.
// Logout and Expire are local state changes and never block on the network.
package session
