package models

import (
	"testing"
	"time"
)

func TestComputeEarnings(t *testing.T) {
	l := DailyLog{
		TotalKm:         100,
		FuelCost:        300,
		OtherExpenses:   50,
		CashCollected:   800,
		OnlineCollected: 200,
	}
	l.ComputeEarnings()
	if l.TotalEarnings != 650 {
		t.Fatalf("expected totalEarnings 650, got %v", l.TotalEarnings)
	}
}

func TestComputeEarningsNegative(t *testing.T) {
	l := DailyLog{FuelCost: 500, OtherExpenses: 100, CashCollected: 200}
	l.ComputeEarnings()
	if l.TotalEarnings != -400 {
		t.Fatalf("expected totalEarnings -400, got %v", l.TotalEarnings)
	}
}

func TestComputeEarningsOverwritesClientValue(t *testing.T) {
	l := DailyLog{CashCollected: 100, TotalEarnings: 9999}
	l.ComputeEarnings()
	if l.TotalEarnings != 100 {
		t.Fatalf("client-supplied totalEarnings must be recomputed, got %v", l.TotalEarnings)
	}
}

func TestNormalizeDay(t *testing.T) {
	in := time.Date(2024, 1, 2, 18, 45, 30, 123, time.FixedZone("X", 3600))
	got := NormalizeDay(in)
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("normalized day must be UTC, got %v", got.Location())
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := EndOfDay(in)
	if got.Day() != 2 || got.Hour() != 23 || got.Minute() != 59 {
		t.Fatalf("unexpected end of day: %v", got)
	}
	if !got.Before(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end of day must stay inside the same day: %v", got)
	}
}
