package intasend

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the header IntaSend uses to carry the webhook signature.
const SignatureHeader = "X-Intasend-Signature"

const signaturePrefix = "sha256="

// SignWebhook computes the signature IntaSend attaches to a webhook body:
// "sha256=" + hex(HMAC-SHA256(secret, raw_body)). Exposed for tests and
// for simulating provider callbacks in development.
func SignWebhook(payload []byte, secret string) string {
	if secret == "" {
		return ""
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature validates the signature header against the raw
// request body in constant time. Missing secret or signature always fails.
func VerifyWebhookSignature(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}

	expected := SignWebhook(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
