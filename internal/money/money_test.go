package money

import (
	"math"
	"testing"
)

func TestFromTaka(t *testing.T) {
	tests := []struct {
		name    string
		taka    float64
		want    int64
		wantErr bool
	}{
		{name: "whole taka", taka: 500, want: 50000},
		{name: "with poisha", taka: 1234.56, want: 123456},
		{name: "half poisha rounds up", taka: 0.005, want: 1},
		{name: "zero", taka: 0, want: 0},
		{name: "negative rejected", taka: -1, wantErr: true},
		{name: "NaN rejected", taka: math.NaN(), wantErr: true},
		{name: "Inf rejected", taka: math.Inf(1), wantErr: true},
		{name: "overflow rejected", taka: 1e17, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromTaka(tt.taka)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromTaka(%v) expected error, got %d", tt.taka, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromTaka(%v) unexpected error: %v", tt.taka, err)
			}
			if got != tt.want {
				t.Errorf("FromTaka(%v) = %d, want %d", tt.taka, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		poisha int64
		want   string
	}{
		{123456, "1234.56"},
		{100000, "1000.00"},
		{2850, "28.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-30000, "-300.00"},
	}

	for _, tt := range tests {
		if got := Format(tt.poisha); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.poisha, got, tt.want)
		}
	}
}

func TestFormatTaka(t *testing.T) {
	if got := FormatTaka(100000); got != "৳1000.00" {
		t.Errorf("FormatTaka(100000) = %q, want %q", got, "৳1000.00")
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, poisha := range []int64{0, 1, 99, 100, 123456, 999999999} {
		if got := FromDecimal(ToDecimal(poisha)); got != poisha {
			t.Errorf("FromDecimal(ToDecimal(%d)) = %d", poisha, got)
		}
	}
}
