// Package arkham is a client for the blockchain-intelligence REST API.
//
// The client covers the four endpoints the crawler needs:
//
//   - SearchEntities: entity lookup by free-text query, cached in an LRU
//   - CheckKey: verifies that an API key is accepted
//   - Health: unauthenticated liveness probe
//   - FetchTransfers: one page of outgoing transfers for an entity on a chain
//
// Requests go through a transport.Sender, so the direct/forwarding fallback
// is applied uniformly. HTTP error statuses are returned as *StatusError and
// are never retried by this package.
package arkham
