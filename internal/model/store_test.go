package model

import "testing"

func TestDepositRateFraction(t *testing.T) {
	cases := []struct {
		rate DepositRate
		want float64
	}{
		{DepositRateTen, 0.10},
		{DepositRateTwenty, 0.20},
		{DepositRateThirty, 0.30},
		{DepositRateForty, 0.40},
		{DepositRateFifty, 0.50},
		{DepositRate(""), 0},
		{DepositRate("SIXTY"), 0},
	}
	for _, tt := range cases {
		if got := tt.rate.Fraction(); got != tt.want {
			t.Fatalf("Fraction(%q)=%v, want %v", tt.rate, got, tt.want)
		}
		if tt.rate.Valid() != (tt.want > 0) {
			t.Fatalf("Valid(%q) inconsistent with Fraction", tt.rate)
		}
	}
}

func TestStoreInBreak(t *testing.T) {
	start, end := "15:00", "17:00"
	s := Store{BreakStart: &start, BreakEnd: &end}

	cases := []struct {
		slot string
		want bool
	}{
		{"14:30", false},
		{"15:00", true}, // start is inclusive
		{"16:30", true},
		{"17:00", false}, // end is exclusive
		{"17:30", false},
	}
	for _, tt := range cases {
		if got := s.InBreak(tt.slot); got != tt.want {
			t.Fatalf("InBreak(%q)=%v, want %v", tt.slot, got, tt.want)
		}
	}

	var noBreak Store
	if noBreak.InBreak("15:30") {
		t.Fatal("store without a break window reported a slot in break")
	}
}

func TestTableFits(t *testing.T) {
	tbl := Table{MinSeats: 2, MaxSeats: 4}
	cases := []struct {
		party uint32
		want  bool
	}{
		{1, false},
		{2, true},
		{4, true},
		{5, false},
	}
	for _, tt := range cases {
		if got := tbl.Fits(tt.party); got != tt.want {
			t.Fatalf("Fits(%d)=%v, want %v", tt.party, got, tt.want)
		}
	}
}

func TestValidSeatsType(t *testing.T) {
	for _, st := range []SeatsType{SeatsGeneral, SeatsWindow, SeatsRoom, SeatsBar, SeatsOutdoor} {
		if !ValidSeatsType(st) {
			t.Fatalf("ValidSeatsType(%q)=false, want true", st)
		}
	}
	if ValidSeatsType(SeatsType("SOFA")) {
		t.Fatal("unknown seats type accepted")
	}
}
