package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signHex(key string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestAuthenticateStatic(t *testing.T) {
	t.Parallel()

	auth := NewSignatureAuthenticator(SignatureModeStatic, "hush")

	tests := []struct {
		name      string
		signature string
		want      bool
	}{
		{"valid", "hush", true},
		{"wrong", "hush2", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.Authenticate([]byte(`{"event":"charge.completed"}`), tt.signature); got != tt.want {
				t.Fatalf("Authenticate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthenticateStaticEmptySecret(t *testing.T) {
	t.Parallel()

	auth := NewSignatureAuthenticator(SignatureModeStatic, "")
	if auth.Authenticate(nil, "") {
		t.Fatal("empty secret with empty signature must not authenticate")
	}
}

func TestAuthenticateHMAC(t *testing.T) {
	t.Parallel()

	auth := NewSignatureAuthenticator(SignatureModeHMAC, "topsecret")
	body := []byte(`{"event":"charge.completed","data":{"id":42}}`)

	if !auth.Authenticate(body, signHex("topsecret", body)) {
		t.Fatal("valid HMAC rejected")
	}
	if auth.Authenticate(body, signHex("wrongkey", body)) {
		t.Fatal("HMAC with wrong key accepted")
	}
	if auth.Authenticate(body, "") {
		t.Fatal("missing signature accepted")
	}
}

// The signature covers the exact inbound bytes. A semantically identical
// body with different whitespace or key order must fail.
func TestAuthenticateHMACRawBytes(t *testing.T) {
	t.Parallel()

	auth := NewSignatureAuthenticator(SignatureModeHMAC, "topsecret")
	original := []byte(`{"data":{"id":42},"event":"charge.completed"}`)
	reserialized := []byte(`{"event":"charge.completed","data":{"id":42}}`)

	sig := signHex("topsecret", original)
	if !auth.Authenticate(original, sig) {
		t.Fatal("original bytes rejected")
	}
	if auth.Authenticate(reserialized, sig) {
		t.Fatal("re-serialized body accepted against the original signature")
	}
}
