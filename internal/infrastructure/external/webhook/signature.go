package webhook

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Signature headers set on every delivery
const (
	HeaderTimestamp = "X-SIP-Timestamp"
	HeaderNonce     = "X-SIP-Nonce"
	HeaderSignature = "X-SIP-Signature"
)

// Sign returns hex(sha256(timestamp + nonce + secret + body))
func Sign(timestamp, nonce, secret string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(timestamp))
	h.Write([]byte(nonce))
	h.Write([]byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Verifier checks signatures on incoming deliveries
type Verifier struct {
	secret  string
	maxSkew time.Duration
	now     func() time.Time
}

// NewVerifier creates a verifier. A zero maxSkew disables the timestamp window.
func NewVerifier(secret string, maxSkew time.Duration) *Verifier {
	return &Verifier{secret: secret, maxSkew: maxSkew, now: time.Now}
}

// Verify checks the signature and, when configured, the timestamp window
func (v *Verifier) Verify(timestamp, nonce, signature string, body []byte) error {
	if v.secret == "" {
		// verification disabled when no secret is configured
		return nil
	}

	if v.maxSkew > 0 {
		sec, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", timestamp, err)
		}
		skew := v.now().Sub(time.Unix(sec, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.maxSkew {
			return fmt.Errorf("timestamp outside allowed window: %s", skew)
		}
	}

	expected := Sign(timestamp, nonce, v.secret, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
