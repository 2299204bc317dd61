package vcp

import (
	"testing"
	"time"
)

func TestNewPriceFrameValidation(t *testing.T) {
	d := func(n int) time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	ok := Bar{Date: d(0), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}

	tests := []struct {
		name    string
		bars    []Bar
		wantErr bool
	}{
		{"valid", []Bar{ok, {Date: d(1), Open: 10.5, High: 12, Low: 10, Close: 11, Volume: 50}}, false},
		{"equal OHLC", []Bar{{Date: d(0), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1}}, false},
		{"high below close", []Bar{{Date: d(0), Open: 10, High: 10, Low: 9, Close: 11, Volume: 1}}, true},
		{"low above open", []Bar{{Date: d(0), Open: 9, High: 11, Low: 9.5, Close: 10, Volume: 1}}, true},
		{"duplicate date", []Bar{ok, ok}, true},
		{"descending dates", []Bar{{Date: d(1), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}, ok}, true},
		{"negative volume", []Bar{{Date: d(0), Open: 10, High: 11, Low: 9, Close: 10, Volume: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceFrame(tt.bars)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPriceFrameDoesNotAliasInput(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []Bar{{Date: d, Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}}
	f, err := NewPriceFrame(bars)
	if err != nil {
		t.Fatal(err)
	}
	bars[0].Close = 99
	if f.Bar(0).Close != 10 {
		t.Error("frame aliases caller-owned bars")
	}
}

func TestMeanVolumeClampsBounds(t *testing.T) {
	prices := []float64{10, 10, 10, 10}
	f := flatFrame(t, prices, func(i int) int64 { return int64(i+1) * 100 })

	if got := f.meanVolume(-5, 10); got != 250 {
		t.Errorf("meanVolume clamped = %v, want 250", got)
	}
	if got := f.meanVolume(3, 2); got != 0 {
		t.Errorf("meanVolume empty range = %v, want 0", got)
	}
}
