package enums

import "testing"

func TestFulfillmentStatusTerminal(t *testing.T) {
	terminal := map[FulfillmentStatus]bool{
		FulfillmentStatusCompleted: true,
		FulfillmentStatusRejected:  true,
		FulfillmentStatusCancelled: true,
	}
	for _, status := range validFulfillmentStatuses {
		if status.IsTerminal() != terminal[status] {
			t.Fatalf("unexpected terminal flag for %s", status)
		}
	}
	if FulfillmentStatusCompleted.ReleasesStock() {
		t.Fatalf("completed orders keep their stock")
	}
}

func TestPaymentStatusSettled(t *testing.T) {
	for _, status := range validPaymentStatuses {
		want := status == PaymentStatusNotRequired || status == PaymentStatusConfirmed
		if status.IsSettled() != want {
			t.Fatalf("unexpected settled flag for %s", status)
		}
	}
}

func TestParseRejectsUnknownValues(t *testing.T) {
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatal("expected unknown payment method to fail")
	}
	if _, err := ParseCancelReason("bored"); err == nil {
		t.Fatal("expected unknown cancel reason to fail")
	}
	if got, err := ParseFulfillmentType("delivery"); err != nil || got != FulfillmentTypeDelivery {
		t.Fatalf("expected delivery, got %q err=%v", got, err)
	}
	if got, err := ParseActorRole("merchant"); err != nil || got != ActorRoleMerchant {
		t.Fatalf("expected merchant, got %q err=%v", got, err)
	}
}

func TestCancelReasonSystemOnly(t *testing.T) {
	for _, reason := range validCancelReasons {
		if reason.IsSystemOnly() != (reason == CancelReasonExpired) {
			t.Fatalf("unexpected system-only flag for %s", reason)
		}
	}
}
