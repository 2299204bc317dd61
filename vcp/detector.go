// Package vcp detects Volatility Contraction Pattern setups in daily
// OHLCV series, following the Minervini/O'Neil methodology: a confirmed
// uptrend, a base of successively tighter pullbacks on drying volume,
// and a pivot whose breakout is confirmed by a volume surge.
//
// The detector is pure and stateless per call: given a config, a frame
// and a symbol it returns exactly one Signal, never an error and never
// a panic. Diagnostics accumulate in Signal.Notes, which is always
// non-empty on a negative verdict.
package vcp

import "fmt"

// Signal is the detector's verdict for one symbol. When Detected is
// false only Symbol and Notes are meaningful, except that a
// trend-template rejection also carries the k/8 pass fraction in
// TrendStrength; when true the pattern fields describe the base, the
// pivot and the scoring breakdown inputs.
type Signal struct {
	Symbol   string `json:"symbol"`
	Detected bool   `json:"detected"`

	PivotPrice                float64       `json:"pivot_price,omitempty"`
	Contractions              []Contraction `json:"contractions,omitempty"`
	ConfidenceScore           float64       `json:"confidence_score"`
	TrendStrength             float64       `json:"trend_strength"`
	VolumeDryUp               bool          `json:"volume_dry_up"`
	FinalContractionTightness float64       `json:"final_contraction_tightness,omitempty"`
	BaseDepth                 float64       `json:"base_depth,omitempty"`
	BreakoutDetected          bool          `json:"breakout_detected"`
	SignalDate                string        `json:"signal_date,omitempty"`

	Notes []string `json:"notes"`
}

// Detector runs the VCP pipeline with a fixed configuration. It holds
// no mutable state, so a single Detector is safe for concurrent use
// across goroutines.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector returns a detector using the given thresholds.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the detector's configuration.
func (d *Detector) Config() DetectorConfig {
	return d.cfg
}

// Detect runs the full pipeline on one frame. Every call returns a
// Signal: validation failures, trend-template rejections and pattern
// rejections produce Detected=false with an explanatory note, and any
// internal arithmetic anomaly is recovered into the same shape.
func (d *Detector) Detect(frame *PriceFrame, symbol string) (signal Signal) {
	signal = Signal{Symbol: symbol, Notes: []string{}}

	defer func() {
		if r := recover(); r != nil {
			signal.Detected = false
			signal.Notes = append(signal.Notes, fmt.Sprintf("Error in VCP detection: %v", r))
		}
	}()

	if !d.validateFrame(frame, &signal) {
		return signal
	}

	if d.cfg.CheckTrendTemplate {
		passed := trendTemplateScore(frame)
		signal.TrendStrength = float64(passed) / 8
		if passed < d.cfg.TrendTemplateRequired {
			signal.Notes = append(signal.Notes, fmt.Sprintf("Trend Template: %d/8 criteria passed", passed))
			return signal
		}
	}

	highs, lows := findSwingPoints(frame, d.cfg.SwingWindow)
	if len(highs) < d.cfg.MinContractions || len(lows) < d.cfg.MinContractions {
		signal.Notes = append(signal.Notes, "Insufficient swing points for pattern analysis")
		return signal
	}

	contractions := identifyContractions(frame, highs, lows, d.cfg)
	if len(contractions) < d.cfg.MinContractions {
		signal.Notes = append(signal.Notes, fmt.Sprintf("Only %d contractions found, need %d", len(contractions), d.cfg.MinContractions))
		return signal
	}

	kept, baseDepth, ok := validatePattern(contractions, d.cfg, &signal.Notes)
	if !ok {
		return signal
	}

	signal.Detected = true
	signal.Contractions = kept
	signal.SignalDate = frame.Last().Date.Format("2006-01-02")
	signal.PivotPrice = pivotPrice(frame, kept)
	signal.TrendStrength = trendStrengthMetric(frame)
	signal.VolumeDryUp = volumeDryUp(kept)
	signal.FinalContractionTightness = kept[len(kept)-1].PercentDrop
	signal.BaseDepth = baseDepth
	signal.ConfidenceScore = confidenceScore(signal.TrendStrength, len(kept), signal.VolumeDryUp, signal.FinalContractionTightness)
	signal.BreakoutDetected = checkBreakout(frame, signal.PivotPrice, d.cfg.BreakoutVolumeMultiplier)
	signal.Notes = append(signal.Notes, fmt.Sprintf("VCP detected with %d contractions", len(kept)))

	return signal
}

// validateFrame enforces the minimum data requirements. Each failing
// condition appends its own note.
func (d *Detector) validateFrame(frame *PriceFrame, signal *Signal) bool {
	if frame.Len() < 60 {
		signal.Notes = append(signal.Notes, "Insufficient data points (need 60+ days)")
		return false
	}

	lastClose := frame.Last().Close
	if lastClose < d.cfg.MinPrice {
		signal.Notes = append(signal.Notes, fmt.Sprintf("Price %.2f below minimum %.2f", lastClose, d.cfg.MinPrice))
		return false
	}

	n := frame.Len()
	avgVolume := frame.meanVolume(n-50, n-1)
	if avgVolume < d.cfg.MinVolume {
		signal.Notes = append(signal.Notes, fmt.Sprintf("Volume %.0f below minimum %.0f", avgVolume, d.cfg.MinVolume))
		return false
	}

	return true
}

// pivotPrice is the breakout trigger: the highest swing high of the
// base plus a 1% confirmation buffer. The last-close fallback only
// applies to an empty list, which cannot occur past validation.
func pivotPrice(frame *PriceFrame, contractions []Contraction) float64 {
	if len(contractions) == 0 {
		return frame.Last().Close * 1.05
	}
	high := contractions[0].HighPrice
	for _, c := range contractions[1:] {
		if c.HighPrice > high {
			high = c.HighPrice
		}
	}
	return high * 1.01
}

// volumeDryUp reports whether the final contraction's average volume
// fell more than 20% below the prior contraction's — supply exhaustion.
func volumeDryUp(contractions []Contraction) bool {
	if len(contractions) < 2 {
		return false
	}
	prev := contractions[len(contractions)-2].AvgVolume
	if prev <= 0 {
		return false
	}
	recent := contractions[len(contractions)-1].AvgVolume
	return (prev-recent)/prev > 0.20
}

// checkBreakout reports whether the last bar closed above the pivot on
// volume exceeding the 50-bar mean by the configured multiplier.
func checkBreakout(frame *PriceFrame, pivot, multiplier float64) bool {
	n := frame.Len()
	last := frame.Last()
	avgVolume := frame.meanVolume(n-50, n-1)
	return last.Close > pivot && float64(last.Volume) > avgVolume*multiplier
}

// confidenceScore applies the additive rubric, clamped to [0, 100]:
// trend strength (up to 30), contraction count (20 for the ideal 3-4,
// 10 for 2-5), volume dry-up (20), volatility compression (a flat 15 —
// always credited once validation has passed) and final tightness
// (15/10/5 at the 5%/8%/10% tiers).
func confidenceScore(trendStrength float64, numContractions int, dryUp bool, finalTightness float64) float64 {
	score := trendStrength * 30

	switch {
	case numContractions >= 3 && numContractions <= 4:
		score += 20
	case numContractions >= 2 && numContractions <= 5:
		score += 10
	}

	if dryUp {
		score += 20
	}

	// Volatility compression is implied by a validated pattern.
	score += 15

	if finalTightness > 0 {
		switch {
		case finalTightness <= 0.05:
			score += 15
		case finalTightness <= 0.08:
			score += 10
		case finalTightness <= 0.10:
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
