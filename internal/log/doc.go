// Package log provides slog handlers that keep credentials out of log output.
//
// SecureHandler wraps any slog.Handler and masks:
//   - attributes whose key names a credential (api-key, x-forward-api-key,
//     authorization, apiKey, ...)
//   - credential query parameters inside URL values
//   - values that look like bearer tokens, JWTs, PEM keys or extended
//     private keys
//   - every occurrence of an explicitly registered secret, such as the
//     configured API key, in messages, strings and errors
//
// Wallet addresses, transaction hashes and run IDs are never masked by
// pattern; only credentials are.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{
//		Verbose: true,
//		Secrets: []string{cfg.APIKey},
//	})
//	slog.SetDefault(logger)
package log
