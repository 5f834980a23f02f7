// Package transport sends HTTP requests to the intelligence API.
//
// Three Senders compose the request path:
//
//   - Direct sends the request as-is, optionally through a SOCKS5 proxy.
//   - Forwarding rewrites the request for a forwarding relay: the original
//     URL moves into the "url" query parameter and the credential header is
//     renamed to the header the relay expects.
//   - Fallback tries a primary Sender and, only when it fails with a
//     network-level error, retries once through a secondary Sender.
//
// HTTP error statuses are never retried here; they are returned as normal
// responses for the caller to interpret. Cancellation is carried by the
// request context and aborts whichever attempt is in flight.
package transport
