package vcp

// smaAt computes the simple moving average of the close series over
// `period` bars ending at position end (inclusive). Returns false when
// fewer than `period` bars are available at that position.
func smaAt(f *PriceFrame, period, end int) (float64, bool) {
	if period <= 0 || end-period+1 < 0 || end >= f.Len() {
		return 0, false
	}
	sum := 0.0
	for i := end - period + 1; i <= end; i++ {
		sum += f.closeAt(i)
	}
	return sum / float64(period), true
}

// trendTemplateScore evaluates Minervini's 8-point trend template against
// the last bar of the frame and returns the count of passing criteria:
//
//  1. Close above the 150-day and 200-day moving averages.
//  2. 150-day MA above the 200-day MA.
//  3. 200-day MA higher than it was 20 bars ago.
//  4. 50-day MA above both the 150-day and 200-day MAs.
//  5. Close above the 50-day MA.
//  6. Close at least 30% above the 52-week low.
//  7. Close within 25% of the 52-week high.
//  8. Close more than 10% above its level 126 bars ago (passes by
//     default when fewer than 126 bars are available).
//
// Criteria whose moving averages cannot be computed from the available
// history fail. 52-week extremes use the last 252 bars, or the whole
// frame when shorter.
func trendTemplateScore(f *PriceFrame) int {
	n := f.Len()
	last := n - 1
	price := f.closeAt(last)

	ma50, ok50 := smaAt(f, 50, last)
	ma150, ok150 := smaAt(f, 150, last)
	ma200, ok200 := smaAt(f, 200, last)
	ma200Prior, okPrior := smaAt(f, 200, n-20)

	high52, low52 := extremes52w(f)

	passed := 0

	// 1 and 2: price above the long averages, and the averages stacked.
	if ok150 && ok200 && price > ma150 && price > ma200 {
		passed++
	}
	if ok150 && ok200 && ma150 > ma200 {
		passed++
	}

	// 3: 200-day MA trending up over the last month of bars.
	if ok200 && okPrior && ma200 > ma200Prior {
		passed++
	}

	// 4 and 5: 50-day MA leadership and price above it.
	if ok50 && ok150 && ok200 && ma50 > ma150 && ma50 > ma200 {
		passed++
	}
	if ok50 && price > ma50 {
		passed++
	}

	// 6: at least 30% above the 52-week low.
	if low52 > 0 && (price-low52)/low52 >= 0.30 {
		passed++
	}

	// 7: within 25% of the 52-week high.
	if high52 > 0 && (high52-price)/high52 <= 0.25 {
		passed++
	}

	// 8: six-month performance above 10%. Short frames pass by default.
	if n >= 126 {
		base := f.closeAt(n - 126)
		if base > 0 && (price-base)/base > 0.10 {
			passed++
		}
	} else {
		passed++
	}

	return passed
}

// extremes52w returns the highest high and lowest low over the last 252
// bars, or the whole frame when shorter.
func extremes52w(f *PriceFrame) (high, low float64) {
	n := f.Len()
	start := n - 252
	if start < 0 {
		start = 0
	}
	high = f.highAt(start)
	low = f.lowAt(start)
	for i := start + 1; i < n; i++ {
		if f.highAt(i) > high {
			high = f.highAt(i)
		}
		if f.lowAt(i) < low {
			low = f.lowAt(i)
		}
	}
	return high, low
}

// trendStrengthMetric scores the near-term trend posture of the frame in
// [0, 1]: 0.3 for close above the 20-day MA, 0.3 for close above the
// 50-day MA, 0.2 for close above its level 10 bars ago, and 0.2 for the
// 10-bar mean volume exceeding the prior 20-bar mean. Frames shorter
// than 50 bars score a neutral 0.5.
func trendStrengthMetric(f *PriceFrame) float64 {
	n := f.Len()
	if n < 50 {
		return 0.5
	}
	last := n - 1
	price := f.closeAt(last)
	score := 0.0

	if ma20, ok := smaAt(f, 20, last); ok && price > ma20 {
		score += 0.3
	}
	if ma50, ok := smaAt(f, 50, last); ok && price > ma50 {
		score += 0.3
	}
	if price > f.closeAt(n-10) {
		score += 0.2
	}
	recent := f.meanVolume(n-10, n-1)
	older := f.meanVolume(n-30, n-11)
	if recent > older {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
