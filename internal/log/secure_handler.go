package log

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked.
// Keys are compared lower-cased with '_' and '-' removed.
var sensitiveKeys = map[string]bool{
	"apikey":             true,
	"xapikey":            true,
	"xforwardapikey":     true,
	"arkhamapikey":       true,
	"authorization":      true,
	"proxyauthorization": true,
	"cookie":             true,
	"setcookie":          true,
	"password":           true,
	"secret":             true,
	"token":              true,
	"accesstoken":        true,
	"privatekey":         true,
	"seed":               true,
	"mnemonic":           true,
	"credentials":        true,
}

// sensitiveKeywords mark a key as sensitive when contained in it.
// The bare "key" is excluded: "wallet_key" and "run_key" are dedup keys, not secrets.
var sensitiveKeywords = []string{
	"password", "secret", "token", "apikey", "credential", "private", "mnemonic",
}

// sensitiveQueryParams are URL query parameters whose values are masked.
var sensitiveQueryParams = []string{"apikey", "api_key", "api-key", "key", "token", "access_token"}

// sensitivePatterns contains value patterns that are masked regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
	// BIP32 extended private keys
	regexp.MustCompile(`^[xyzt]prv[1-9A-HJ-NP-Za-km-z]{100,}$`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// minSecretLen keeps short registered secrets from masking unrelated text.
const minSecretLen = 6

// SecureHandler wraps an slog.Handler to mask credentials before records
// reach the underlying handler.
type SecureHandler struct {
	handler slog.Handler
	secrets []string
}

// HandlerOption configures a SecureHandler.
type HandlerOption func(*SecureHandler)

// WithSecrets registers literal values to be masked wherever they appear.
// Empty and very short values are ignored.
func WithSecrets(secrets ...string) HandlerOption {
	return func(h *SecureHandler) {
		for _, s := range secrets {
			s = strings.TrimSpace(s)
			if len(s) >= minSecretLen {
				h.secrets = append(h.secrets, s)
			}
		}
	}
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler, opts ...HandlerOption) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &SecureHandler{handler: handler}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the underlying handler handles records at level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's message and attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, h.redactSecrets(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes masked and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized), secrets: h.secrets}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name), secrets: h.secrets}
}

func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if masked := h.redactSecrets(redactURL(s)); masked != s {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			msg := err.Error()
			if masked := h.redactSecrets(msg); masked != msg {
				return slog.String(a.Key, masked)
			}
		}
	}
	return a
}

// redactSecrets replaces every registered secret in s.
func (h *SecureHandler) redactSecrets(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, MaskValue)
	}
	return s
}

func normalizeKey(key string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(key))
}

func isSensitiveKey(key string) bool {
	k := normalizeKey(key)
	if sensitiveKeys[k] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// redactURL masks credential query parameters of absolute URLs. Other
// strings are returned unchanged.
func redactURL(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "?") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	q := u.Query()
	changed := false
	for name := range q {
		for _, p := range sensitiveQueryParams {
			if strings.EqualFold(name, p) {
				q.Set(name, MaskValue)
				changed = true
			}
		}
	}
	if !changed {
		return s
	}
	u.RawQuery = q.Encode()
	return u.String()
}
