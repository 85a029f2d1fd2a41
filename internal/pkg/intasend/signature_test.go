package intasend

import (
	"strings"
	"testing"
)

func TestSignWebhookFormat(t *testing.T) {
	sig := SignWebhook([]byte(`{"event":"payment.completed"}`), "whsec_test")
	if !strings.HasPrefix(sig, "sha256=") {
		t.Fatalf("expected sha256= prefix, got %q", sig)
	}
	if len(sig) != len("sha256=")+64 {
		t.Fatalf("expected 64 hex chars after prefix, got %q", sig)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"payment.completed","data":{"api_ref":"abc","id":"tx_1"}}`)
	secret := "whsec_test"
	sig := SignWebhook(payload, secret)

	if !VerifyWebhookSignature(payload, sig, secret) {
		t.Fatal("valid signature rejected")
	}
	if VerifyWebhookSignature(payload, sig, "other-secret") {
		t.Fatal("signature accepted with wrong secret")
	}
	if VerifyWebhookSignature([]byte(`{"event":"payment.completed","data":{"api_ref":"abd","id":"tx_1"}}`), sig, secret) {
		t.Fatal("signature accepted for tampered payload")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatal("empty signature accepted")
	}
	if VerifyWebhookSignature(payload, sig, "") {
		t.Fatal("signature accepted with empty secret")
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event":"payment.completed","data":{"api_ref":"p-1","id":"tx_9"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Event != EventPaymentCompleted || ev.Data.APIRef != "p-1" || ev.Data.ID != "tx_9" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.RequiresReference() {
		t.Fatal("completion event should require api_ref")
	}

	if _, err := ParseEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, err := ParseEvent([]byte(`{"data":{}}`)); err == nil {
		t.Fatal("expected error for missing event kind")
	}

	ev, err = ParseEvent([]byte(`{"event":"invoice.created","data":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.RequiresReference() {
		t.Fatal("irrelevant event should not require api_ref")
	}
}
