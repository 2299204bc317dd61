package vcp

import (
	"fmt"
	"time"
)

// Bar is a single daily OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceFrame is an immutable, date-ascending sequence of daily bars.
// It is constructed once by the ingestion side and never mutated by the
// detector; all accessors return copies or read-only views.
type PriceFrame struct {
	bars []Bar
}

// NewPriceFrame validates and wraps a bar sequence. Bars must be strictly
// ascending by date with no duplicates, and each bar must satisfy
// low <= min(open, close) <= max(open, close) <= high with non-negative
// prices and volume. Calendar gaps are allowed.
func NewPriceFrame(bars []Bar) (*PriceFrame, error) {
	for i, b := range bars {
		if b.Low < 0 || b.Volume < 0 {
			return nil, fmt.Errorf("bar %d (%s): negative price or volume", i, b.Date.Format("2006-01-02"))
		}
		lo, hi := b.Open, b.Close
		if lo > hi {
			lo, hi = hi, lo
		}
		if b.Low > lo || hi > b.High {
			return nil, fmt.Errorf("bar %d (%s): OHLC out of order", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("bar %d (%s): dates must be strictly ascending", i, b.Date.Format("2006-01-02"))
		}
	}
	owned := make([]Bar, len(bars))
	copy(owned, bars)
	return &PriceFrame{bars: owned}, nil
}

// Len returns the number of bars in the frame.
func (f *PriceFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.bars)
}

// Bar returns the bar at position i.
func (f *PriceFrame) Bar(i int) Bar {
	return f.bars[i]
}

// Last returns the most recent bar.
func (f *PriceFrame) Last() Bar {
	return f.bars[len(f.bars)-1]
}

// Bars returns a copy of the underlying bar slice.
func (f *PriceFrame) Bars() []Bar {
	out := make([]Bar, len(f.bars))
	copy(out, f.bars)
	return out
}

// closeAt, highAt, lowAt and volumeAt keep the pipeline code close to the
// series notation used throughout the detector.
func (f *PriceFrame) closeAt(i int) float64 { return f.bars[i].Close }
func (f *PriceFrame) highAt(i int) float64  { return f.bars[i].High }
func (f *PriceFrame) lowAt(i int) float64   { return f.bars[i].Low }
func (f *PriceFrame) volumeAt(i int) float64 {
	return float64(f.bars[i].Volume)
}

// meanVolume averages volume over bar positions [from, to] inclusive.
// Bounds are clamped to the frame.
func (f *PriceFrame) meanVolume(from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(f.bars)-1 {
		to = len(f.bars) - 1
	}
	if from > to {
		return 0
	}
	sum := 0.0
	for i := from; i <= to; i++ {
		sum += f.volumeAt(i)
	}
	return sum / float64(to-from+1)
}
