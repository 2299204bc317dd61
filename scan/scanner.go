// Package scan drives VCP detection across a symbol universe. It owns
// no detection logic: it fetches frames, hands them to the detector,
// and collects the positive verdicts.
package scan

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/Stockmasterflex/legend-ai-scanner/vcp"
)

// Fetcher supplies daily price history for a symbol. Implementations
// must not mutate a frame after returning it; a nil frame or an error
// means the symbol is skipped.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (*vcp.PriceFrame, error)
}

// Detector is the detection entry point consumed by the scanner,
// satisfied by *vcp.Detector.
type Detector interface {
	Detect(frame *vcp.PriceFrame, symbol string) vcp.Signal
}

// Scanner runs the detector over many symbols with bounded
// concurrency. Detection itself is pure and CPU-bound, so workers
// share one Detector without coordination; the bound exists to limit
// pressure on the upstream fetcher.
type Scanner struct {
	fetcher     Fetcher
	detector    Detector
	concurrency int
}

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 4

// NewScanner creates a scan driver. A non-positive concurrency falls
// back to DefaultConcurrency.
func NewScanner(fetcher Fetcher, detector Detector, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scanner{fetcher: fetcher, detector: detector, concurrency: concurrency}
}

// Scan fetches and analyzes every symbol, returning the detected
// signals sorted by confidence descending, ties broken by symbol
// ascending. A failed or empty fetch is logged and skipped; one bad
// symbol never aborts the batch. Cancellation is cooperative: it is
// checked before each fetch, and a detection already underway runs to
// completion.
func (s *Scanner) Scan(ctx context.Context, symbols []string) []vcp.Signal {
	jobs := make(chan string)
	var mu sync.Mutex
	var detected []vcp.Signal

	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				if ctx.Err() != nil {
					continue
				}
				signal, ok := s.scanOne(ctx, symbol)
				if !ok {
					continue
				}
				mu.Lock()
				detected = append(detected, signal)
				mu.Unlock()
			}
		}()
	}

	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()

	sort.Slice(detected, func(i, j int) bool {
		if detected[i].ConfidenceScore != detected[j].ConfidenceScore {
			return detected[i].ConfidenceScore > detected[j].ConfidenceScore
		}
		return detected[i].Symbol < detected[j].Symbol
	})
	return detected
}

// scanOne fetches and analyzes a single symbol, returning the signal
// only on a positive verdict.
func (s *Scanner) scanOne(ctx context.Context, symbol string) (vcp.Signal, bool) {
	frame, err := s.fetcher.Fetch(ctx, symbol)
	if err != nil {
		log.Printf("⚠️  Failed to fetch %s: %v", symbol, err)
		return vcp.Signal{}, false
	}
	if frame == nil || frame.Len() == 0 {
		log.Printf("⚠️  No price data for %s, skipping", symbol)
		return vcp.Signal{}, false
	}

	signal := s.detector.Detect(frame, symbol)
	if !signal.Detected {
		return vcp.Signal{}, false
	}
	log.Printf("✓ VCP detected for %s - Confidence: %.1f%%, Contractions: %d, Pivot: $%.2f",
		symbol, signal.ConfidenceScore, len(signal.Contractions), signal.PivotPrice)
	return signal, true
}
