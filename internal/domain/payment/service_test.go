package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/edusdg/tutoria-api/internal/domain/payment"
	"github.com/edusdg/tutoria-api/internal/pkg/intasend"
)

func TestCreateCheckoutRejectsUnknownPackage(t *testing.T) {
	packages := []payment.Package{
		{Credits: 50, PriceCents: 500},
		{Credits: 100, PriceCents: 900},
	}
	svc := payment.NewService(
		payment.NewRepository(nil, nil),
		staticDirectory{},
		intasend.NewClient(intasend.Config{PublicKey: "ISPubKey_test"}),
		packages,
		"USD",
		nil,
	)

	for _, credits := range []int64{0, 1, 99, 1000} {
		_, err := svc.CreateCheckout(context.Background(), uuid.New(), credits)
		if !errors.Is(err, payment.ErrInvalidPackage) {
			t.Errorf("credits=%d: expected ErrInvalidPackage, got %v", credits, err)
		}
	}
}

func TestCreateCheckoutPricesFromPackage(t *testing.T) {
	f := newFixture(t)

	accountID := uuid.New()
	checkout, err := f.svc.CreateCheckout(context.Background(), accountID, 500)
	if err != nil {
		t.Fatalf("create checkout failed: %v", err)
	}

	if checkout.CheckoutData.APIRef != checkout.PaymentID.String() {
		t.Fatalf("api_ref %q does not match payment id %s", checkout.CheckoutData.APIRef, checkout.PaymentID)
	}

	payments, err := f.svc.History(context.Background(), accountID, 10, 0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(payments))
	}
	p := payments[0]
	if p.Status != payment.StatusPending {
		t.Fatalf("expected pending payment, got %s", p.Status)
	}
	if p.AmountCents != 4000 || p.CreditsPurchased != 500 {
		t.Fatalf("expected 500 credits at 4000 cents, got %d credits at %d cents", p.CreditsPurchased, p.AmountCents)
	}
}

func TestRefundRequiresCompletedPayment(t *testing.T) {
	f := newFixture(t)

	accountID := uuid.New()
	paymentID := f.createPending(t, accountID, 50)

	if err := f.svc.Refund(context.Background(), paymentID); !errors.Is(err, payment.ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable for pending payment, got %v", err)
	}

	rec := f.deliverSigned(completionBody(t, paymentID.String(), "tx-refund"))
	if rec.Code != 200 {
		t.Fatalf("settlement failed with status %d", rec.Code)
	}

	if err := f.svc.Refund(context.Background(), paymentID); err != nil {
		t.Fatalf("refund of completed payment failed: %v", err)
	}
	if err := f.svc.Refund(context.Background(), paymentID); !errors.Is(err, payment.ErrNotRefundable) {
		t.Fatalf("expected ErrNotRefundable on second refund, got %v", err)
	}
}
