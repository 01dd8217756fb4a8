// Package signature authenticates webhook deliveries against the shared
// signing secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/weaveworks/payment-notifier/diaglog"
)

// Prefix tags the hex digest in the signature header.
const Prefix = "sha256="

// Mode says whether verification is actually performed.
type Mode int

const (
	// ModeEnforced checks every delivery against the secret.
	ModeEnforced Mode = iota
	// ModeDisabled accepts everything. Only acceptable outside production;
	// selected when no signing secret is configured.
	ModeDisabled
)

// Verifier checks webhook payload signatures.
type Verifier struct {
	mode   Mode
	secret []byte
	diag   *diaglog.Log
}

// New returns a Verifier. An empty secret selects ModeDisabled.
func New(secret string, diag *diaglog.Log) *Verifier {
	mode := ModeEnforced
	if secret == "" {
		mode = ModeDisabled
	}
	return &Verifier{
		mode:   mode,
		secret: []byte(secret),
		diag:   diag,
	}
}

// Mode returns the verification mode in effect.
func (v *Verifier) Mode() Mode {
	return v.mode
}

// Verify reports whether header carries a valid signature over payload. The
// digest is HMAC-SHA256 of the raw payload bytes, hex encoded and prefixed
// with "sha256="; comparison is constant time over the raw bytes of both
// operands. In ModeDisabled it records a warning and accepts the delivery.
func (v *Verifier) Verify(payload []byte, header string) bool {
	if v.mode == ModeDisabled {
		v.diag.Append("WARNING: no webhook signing secret configured, accepting delivery unverified")
		return true
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := Prefix + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(header), []byte(expected))
}

// Sign computes the signature header value for payload under secret. Used by
// tests and synthetic deliveries.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return Prefix + hex.EncodeToString(mac.Sum(nil))
}
