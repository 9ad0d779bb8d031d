package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

type SignatureMode string

const (
	// SignatureModeStatic compares the header value against a pre-shared
	// secret, the way the gateway dashboard's "secret hash" works.
	SignatureModeStatic SignatureMode = "static"

	// SignatureModeHMAC expects the header to carry hex(HMAC-SHA256(body))
	// computed over the exact raw request bytes.
	SignatureModeHMAC SignatureMode = "hmac"
)

// SignatureAuthenticator validates that a webhook call originates from the
// payment gateway. It is a pure check: no side effects, fails closed.
type SignatureAuthenticator struct {
	mode   SignatureMode
	secret []byte
}

func NewSignatureAuthenticator(mode SignatureMode, secret string) *SignatureAuthenticator {
	return &SignatureAuthenticator{mode: mode, secret: []byte(secret)}
}

// Authenticate checks the signature header against the raw body. rawBody
// must be the unparsed inbound bytes; signing a re-serialized object breaks
// HMAC verification whenever key order or whitespace differs.
func (a *SignatureAuthenticator) Authenticate(rawBody []byte, signature string) bool {
	if signature == "" || len(a.secret) == 0 {
		return false
	}

	switch a.mode {
	case SignatureModeHMAC:
		mac := hmac.New(sha256.New, a.secret)
		mac.Write(rawBody)
		expected := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(expected), []byte(signature))
	default:
		return subtle.ConstantTimeCompare(a.secret, []byte(signature)) == 1
	}
}
