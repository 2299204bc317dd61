package vcp

import (
	"testing"
	"time"
)

func frameFromHighLow(t *testing.T, highs, lows []float64) *PriceFrame {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		bars[i] = Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   mid,
			High:   highs[i],
			Low:    lows[i],
			Close:  mid,
			Volume: 1_000_000,
		}
	}
	f, err := NewPriceFrame(bars)
	if err != nil {
		t.Fatalf("NewPriceFrame: %v", err)
	}
	return f
}

func TestFindSwingPointsBasic(t *testing.T) {
	// A single peak at index 7 and trough at index 14 inside a 22-bar
	// series, window w=3.
	highs := []float64{10, 11, 12, 13, 14, 15, 16, 20, 16, 15, 14, 13, 12, 11, 10, 11, 12, 13, 14, 15, 16, 17}
	lows := make([]float64, len(highs))
	for i, h := range highs {
		lows[i] = h - 1
	}
	f := frameFromHighLow(t, highs, lows)

	swingHighs, swingLows := findSwingPoints(f, 3)

	if len(swingHighs) != 1 || swingHighs[0].Index != 7 {
		t.Fatalf("swing highs = %+v, want single at index 7", swingHighs)
	}
	if swingHighs[0].Kind != SwingHigh || swingHighs[0].Price != 20 {
		t.Errorf("unexpected swing high: %+v", swingHighs[0])
	}
	if len(swingLows) != 1 || swingLows[0].Index != 14 {
		t.Fatalf("swing lows = %+v, want single at index 14", swingLows)
	}
	if swingLows[0].Kind != SwingLow || swingLows[0].Price != 9 {
		t.Errorf("unexpected swing low: %+v", swingLows[0])
	}
}

func TestFindSwingPointsEdgeExclusion(t *testing.T) {
	// Extremes inside the first/last w bars are never reported.
	highs := []float64{30, 10, 11, 12, 13, 12, 11, 10, 9, 40}
	lows := make([]float64, len(highs))
	for i, h := range highs {
		lows[i] = h - 1
	}
	f := frameFromHighLow(t, highs, lows)

	swingHighs, _ := findSwingPoints(f, 2)
	for _, s := range swingHighs {
		if s.Index < 2 || s.Index > len(highs)-3 {
			t.Errorf("swing point at excluded index %d", s.Index)
		}
	}
	if len(swingHighs) != 1 || swingHighs[0].Index != 4 {
		t.Errorf("swing highs = %+v, want single at index 4", swingHighs)
	}
}

func TestFindSwingPointsTies(t *testing.T) {
	// A flat double top: both equal maxima qualify, reported in
	// ascending index order.
	highs := []float64{10, 11, 12, 15, 15, 12, 11, 10, 9, 8, 8}
	lows := make([]float64, len(highs))
	for i, h := range highs {
		lows[i] = h - 1
	}
	f := frameFromHighLow(t, highs, lows)

	swingHighs, _ := findSwingPoints(f, 2)
	if len(swingHighs) != 2 {
		t.Fatalf("swing highs = %+v, want both tied maxima", swingHighs)
	}
	if swingHighs[0].Index != 3 || swingHighs[1].Index != 4 {
		t.Errorf("tied maxima order = %d, %d; want 3, 4", swingHighs[0].Index, swingHighs[1].Index)
	}
}

func TestFindSwingPointsSameIndexBoth(t *testing.T) {
	// A wide-range bar can be a swing high and a swing low at once.
	highs := []float64{10, 10, 10, 18, 10, 10, 10}
	lows := []float64{8, 8, 8, 2, 8, 8, 8}
	f := frameFromHighLow(t, highs, lows)

	swingHighs, swingLows := findSwingPoints(f, 2)
	foundHigh, foundLow := false, false
	for _, s := range swingHighs {
		if s.Index == 3 {
			foundHigh = true
		}
	}
	for _, s := range swingLows {
		if s.Index == 3 {
			foundLow = true
		}
	}
	if !foundHigh || !foundLow {
		t.Errorf("index 3 should be both a swing high and low; highs=%+v lows=%+v", swingHighs, swingLows)
	}
}
