package vcp

// DetectorConfig holds the tunable thresholds of the VCP detection pipeline.
// Zero values are not meaningful; start from DefaultConfig and override.
type DetectorConfig struct {
	// MinPrice is the minimum last close for a frame to be considered.
	MinPrice float64 `yaml:"min_price"`
	// MinVolume is the minimum mean volume over the last 50 bars.
	MinVolume float64 `yaml:"min_volume"`
	// MinContractions and MaxContractions bound the contraction count.
	// Assembled lists longer than MaxContractions keep the most recent.
	MinContractions int `yaml:"min_contractions"`
	MaxContractions int `yaml:"max_contractions"`
	// MaxBaseDepth is the maximum total depth of the base (0.35 = 35%).
	MaxBaseDepth float64 `yaml:"max_base_depth"`
	// FinalContractionMax is the maximum percent drop of the last
	// contraction. The bound is inclusive.
	FinalContractionMax float64 `yaml:"final_contraction_max"`
	// BreakoutVolumeMultiplier scales the 50-bar mean volume for
	// breakout confirmation.
	BreakoutVolumeMultiplier float64 `yaml:"breakout_volume_multiplier"`
	// CheckTrendTemplate gates detection on the 8-criterion trend
	// template. Disable to scan regardless of trend posture.
	CheckTrendTemplate bool `yaml:"check_trend_template"`
	// SwingWindow is the half-width w of the 2w+1 swing extrema window.
	SwingWindow int `yaml:"swing_window"`
	// RecentPeriodDays bounds the lookback for contraction assembly,
	// capped at half the frame length.
	RecentPeriodDays int `yaml:"recent_period_days"`
	// DecreasingRatioThreshold is the minimum fraction of adjacent
	// contraction pairs with non-increasing percent drop.
	DecreasingRatioThreshold float64 `yaml:"decreasing_ratio_threshold"`
	// TrendTemplateRequired is the number of trend-template criteria
	// (of 8) that must pass.
	TrendTemplateRequired int `yaml:"trend_template_required"`
}

// DefaultConfig returns the standard Minervini-style thresholds.
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		MinPrice:                 10.0,
		MinVolume:                500_000,
		MinContractions:          2,
		MaxContractions:          6,
		MaxBaseDepth:             0.35,
		FinalContractionMax:      0.10,
		BreakoutVolumeMultiplier: 1.5,
		CheckTrendTemplate:       true,
		SwingWindow:              5,
		RecentPeriodDays:         60,
		DecreasingRatioThreshold: 0.6,
		TrendTemplateRequired:    6,
	}
}
