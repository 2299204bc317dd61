package vcp

import (
	"fmt"
	"sort"
	"time"
)

// Contraction is a measured pullback from a swing high to a subsequent
// swing low.
type Contraction struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	HighPrice    float64   `json:"high_price"`
	LowPrice     float64   `json:"low_price"`
	PercentDrop  float64   `json:"percent_drop"`
	AvgVolume    float64   `json:"avg_volume"`
	DurationDays int       `json:"duration_days"`
}

// identifyContractions pairs recent swing highs with subsequent swing
// lows. Only swing points within the last RecentPeriodDays bars (capped
// at half the frame) are considered; each high is paired with the
// lowest-priced low strictly after it, ties going to the earliest. The
// same low may serve several highs and contractions may overlap — the
// group is judged holistically by validatePattern. Returns the pairs
// sorted by start date.
func identifyContractions(f *PriceFrame, highs, lows []SwingPoint, cfg DetectorConfig) []Contraction {
	n := f.Len()
	recent := cfg.RecentPeriodDays
	if half := n / 2; half < recent {
		recent = half
	}
	baseStart := n - recent

	var recentHighs, recentLows []SwingPoint
	for _, h := range highs {
		if h.Index >= baseStart {
			recentHighs = append(recentHighs, h)
		}
	}
	for _, l := range lows {
		if l.Index >= baseStart {
			recentLows = append(recentLows, l)
		}
	}
	if len(recentHighs) < 2 || len(recentLows) < 2 {
		return nil
	}

	var contractions []Contraction
	for _, h := range recentHighs {
		if h.Price <= 0 {
			continue
		}
		// Lowest low strictly after this high; first occurrence wins
		// on equal prices.
		var best *SwingPoint
		for i := range recentLows {
			l := &recentLows[i]
			if !l.Date.After(h.Date) {
				continue
			}
			if best == nil || l.Price < best.Price {
				best = l
			}
		}
		if best == nil {
			continue
		}
		contractions = append(contractions, Contraction{
			StartDate:    h.Date,
			EndDate:      best.Date,
			HighPrice:    h.Price,
			LowPrice:     best.Price,
			PercentDrop:  (h.Price - best.Price) / h.Price,
			AvgVolume:    f.meanVolume(h.Index, best.Index),
			DurationDays: int(best.Date.Sub(h.Date).Hours() / 24),
		})
	}

	sort.SliceStable(contractions, func(i, j int) bool {
		return contractions[i].StartDate.Before(contractions[j].StartDate)
	})
	return contractions
}

// validatePattern applies the group-level VCP criteria to an ordered
// contraction list. Lists longer than MaxContractions are reduced to the
// most recent entries first; the returned slice is the one downstream
// metrics and the emitted signal must use. Rejection reasons are
// appended to notes. The base depth of an accepted pattern is returned
// for reporting.
func validatePattern(contractions []Contraction, cfg DetectorConfig, notes *[]string) ([]Contraction, float64, bool) {
	if len(contractions) < cfg.MinContractions {
		*notes = append(*notes, fmt.Sprintf("Only %d contractions found, need %d", len(contractions), cfg.MinContractions))
		return nil, 0, false
	}
	if len(contractions) > cfg.MaxContractions {
		contractions = contractions[len(contractions)-cfg.MaxContractions:]
	}

	// Successive pullbacks should mostly shrink.
	decreasing := 0
	for i := 1; i < len(contractions); i++ {
		if contractions[i].PercentDrop <= contractions[i-1].PercentDrop {
			decreasing++
		}
	}
	if float64(decreasing)/float64(len(contractions)-1) < cfg.DecreasingRatioThreshold {
		*notes = append(*notes, "Contractions not sufficiently decreasing")
		return nil, 0, false
	}

	final := contractions[len(contractions)-1]
	if final.PercentDrop > cfg.FinalContractionMax {
		*notes = append(*notes, fmt.Sprintf("Final contraction %.1f%% too wide", final.PercentDrop*100))
		return nil, 0, false
	}

	maxHigh, minLow := contractions[0].HighPrice, contractions[0].LowPrice
	for _, c := range contractions[1:] {
		if c.HighPrice > maxHigh {
			maxHigh = c.HighPrice
		}
		if c.LowPrice < minLow {
			minLow = c.LowPrice
		}
	}
	baseDepth := (maxHigh - minLow) / maxHigh
	if baseDepth > cfg.MaxBaseDepth {
		*notes = append(*notes, fmt.Sprintf("Base too deep: %.1f%%", baseDepth*100))
		return nil, 0, false
	}

	// A rising volume trend through the base is suspicious but not
	// disqualifying on its own.
	if len(contractions) >= 3 && volumeSlope(contractions) > 0 {
		*notes = append(*notes, "Volume not decreasing through pattern")
	}

	return contractions, baseDepth, true
}

// volumeSlope fits a least-squares line to average volume per
// contraction and returns its slope.
func volumeSlope(contractions []Contraction) float64 {
	n := float64(len(contractions))
	meanX := (n - 1) / 2
	meanY := 0.0
	for _, c := range contractions {
		meanY += c.AvgVolume
	}
	meanY /= n

	num, den := 0.0, 0.0
	for i, c := range contractions {
		dx := float64(i) - meanX
		num += dx * (c.AvgVolume - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
