package enums

import "testing"

func TestParseReadingStatus(t *testing.T) {
	for _, raw := range []string{"pending", "verified", "disputed"} {
		status, err := ParseReadingStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !status.IsValid() {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	if _, err := ParseReadingStatus("approved"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestReadingStatusTerminal(t *testing.T) {
	if ReadingStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !ReadingStatusVerified.IsTerminal() || !ReadingStatusDisputed.IsTerminal() {
		t.Fatal("verified and disputed must be terminal")
	}
}

func TestParseNozzleStatus(t *testing.T) {
	if _, err := ParseNozzleStatus("maintenance"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if NozzleStatus("broken").IsValid() {
		t.Fatal("expected unknown nozzle status to be invalid")
	}
}

func TestOutboxEnums(t *testing.T) {
	if _, err := ParseOutboxEventType("reading_verified"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOutboxAggregateType("vendor_order"); err == nil {
		t.Fatal("expected unknown aggregate to fail")
	}
	if !InventoryOperationDispensing.IsValid() {
		t.Fatal("dispensing must be valid")
	}
}

func TestParseOutboxDLQErrorReason(t *testing.T) {
	if _, err := ParseOutboxDLQErrorReason("non_retryable"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOutboxDLQErrorReason("timeout"); err == nil {
		t.Fatal("expected unknown reason to fail")
	}
}
