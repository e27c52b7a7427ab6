package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		qty  int
		unit string
		want string
	}{
		{1, "300.00", "300.00"},
		{2, "2.50", "5.00"},
		{1, "0.125", "0.13"},
		{1, "0.005", "0.01"},
		{1, "0.0049", "0.00"},
		{3, "1.2345", "3.70"},
		{3, "0.1", "0.30"},
		{7, "0", "0.00"},
	}
	for _, tt := range tests {
		got := LineAmount(tt.qty, decimal.RequireFromString(tt.unit))
		if Money(got) != tt.want {
			t.Errorf("LineAmount(%d, %s) = %s, want %s", tt.qty, tt.unit, Money(got), tt.want)
		}
	}
}

func TestMoney(t *testing.T) {
	if got := Money(decimal.NewFromInt(305)); got != "305.00" {
		t.Errorf("Money(305) = %q", got)
	}
	if got := Money(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))); got != "0.30" {
		t.Errorf("Money(0.1+0.2) = %q", got)
	}
}
