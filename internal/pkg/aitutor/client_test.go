package aitutor

import (
	"context"
	"errors"
	"testing"
)

func TestParseInferenceResponse_List(t *testing.T) {
	text, err := parseInferenceResponse([]byte(`[{"generated_text":"  Photosynthesis converts light into energy.  "}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Photosynthesis converts light into energy." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestParseInferenceResponse_Object(t *testing.T) {
	text, err := parseInferenceResponse([]byte(`{"generated_text":"answer"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "answer" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestParseInferenceResponse_EmptyList(t *testing.T) {
	_, err := parseInferenceResponse([]byte(`[]`))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestParseInferenceResponse_Garbage(t *testing.T) {
	_, err := parseInferenceResponse([]byte(`"just a string"`))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateWithoutToken(t *testing.T) {
	c := NewHFClient(Config{Model: "test-model"})
	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable without token, got %v", err)
	}
}
