// Package notifications delivers newly detected signals to external
// webhook consumers.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Stockmasterflex/legend-ai-scanner/vcp"
)

// WebhookPayload is the JSON body POSTed for each detected signal.
type WebhookPayload struct {
	Event           string    `json:"event"`
	DetectedAt      time.Time `json:"detected_at"`
	Symbol          string    `json:"symbol"`
	Pattern         string    `json:"pattern"`
	PivotPrice      float64   `json:"pivot_price"`
	ConfidenceScore float64   `json:"confidence_score"`
	Contractions    int       `json:"contractions"`
	VolumeDryUp     bool      `json:"volume_dry_up"`
	Breakout        bool      `json:"breakout_detected"`
}

// Notifier POSTs detection events to a fixed set of webhook URLs.
// Delivery is fire-and-forget: failures are logged, never retried.
type Notifier struct {
	urls   []string
	client *http.Client
}

// NewNotifier creates a notifier for the given URLs. With no URLs the
// notifier is inert.
func NewNotifier(urls []string) *Notifier {
	return &Notifier{
		urls: urls,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifySignals delivers one payload per detected signal to every
// configured webhook.
func (n *Notifier) NotifySignals(signals []vcp.Signal, asOf time.Time) {
	if len(n.urls) == 0 || len(signals) == 0 {
		return
	}
	for _, s := range signals {
		payload := WebhookPayload{
			Event:           "vcp_detected",
			DetectedAt:      asOf,
			Symbol:          s.Symbol,
			Pattern:         "VCP",
			PivotPrice:      s.PivotPrice,
			ConfidenceScore: s.ConfidenceScore,
			Contractions:    len(s.Contractions),
			VolumeDryUp:     s.VolumeDryUp,
			Breakout:        s.BreakoutDetected,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("⚠️  Failed to marshal webhook payload for %s: %v", s.Symbol, err)
			continue
		}
		for _, url := range n.urls {
			go n.deliver(url, s.Symbol, body)
		}
	}
}

func (n *Notifier) deliver(url, symbol string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️  Webhook request for %s failed: %v", symbol, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("⚠️  Webhook delivery to %s failed for %s: %v", url, symbol, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️  Webhook %s returned %d for %s", url, resp.StatusCode, symbol)
	}
}
