package material

import "testing"

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		unitPrice int64 // poisha
		want      int64
	}{
		{name: "whole bags", quantity: 50, unitPrice: 55000, want: 2750000},
		{name: "fractional cft", quantity: 120.5, unitPrice: 4500, want: 542250},
		{name: "rounds half up", quantity: 0.333, unitPrice: 100, want: 33},
		{name: "tiny quantity", quantity: 0.005, unitPrice: 100, want: 1},
		{name: "zero quantity", quantity: 0, unitPrice: 55000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineTotal(tt.quantity, tt.unitPrice)
			if got != tt.want {
				t.Errorf("lineTotal(%v, %d) = %d, want %d", tt.quantity, tt.unitPrice, got, tt.want)
			}
		})
	}
}
