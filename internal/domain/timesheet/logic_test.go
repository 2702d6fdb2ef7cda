package timesheet

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateHours(t *testing.T) {
	if err := ValidateHours(decimal.NewFromFloat(7.5)); err != nil {
		t.Fatalf("expected 7.5 to be valid, got %v", err)
	}
	if err := ValidateHours(decimal.Zero); err == nil {
		t.Fatal("expected zero hours to be rejected")
	}
	if err := ValidateHours(decimal.NewFromInt(-3)); err == nil {
		t.Fatal("expected negative hours to be rejected")
	}
}

func TestValidateDate(t *testing.T) {
	today := time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC)

	if err := ValidateDate(today, today); err != nil {
		t.Fatalf("today must be allowed: %v", err)
	}
	if err := ValidateDate(today.AddDate(0, 0, -1), today); err != nil {
		t.Fatalf("yesterday must be allowed: %v", err)
	}
	if err := ValidateDate(today.AddDate(0, 0, 1), today); err != ErrFutureDate {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
}

func TestValidateActualWindow(t *testing.T) {
	if err := ValidateActualWindow("", ""); err != nil {
		t.Fatalf("empty pair must be valid: %v", err)
	}
	if err := ValidateActualWindow("20:00", "23:30"); err != nil {
		t.Fatalf("valid pair rejected: %v", err)
	}
	// Wrap past midnight is a scheduling fact, not an input error.
	if err := ValidateActualWindow("22:00", "02:00"); err != nil {
		t.Fatalf("wrapping pair rejected: %v", err)
	}
	if err := ValidateActualWindow("20:00", ""); err == nil {
		t.Fatal("half-set pair must be rejected")
	}
	if err := ValidateActualWindow("20:00", "25:00"); err == nil {
		t.Fatal("out-of-range end must be rejected")
	}
}
