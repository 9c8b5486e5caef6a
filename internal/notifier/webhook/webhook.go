// Package webhook posts journal messages to an HTTP endpoint as JSON.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adiptan/trading-journal/internal/notifier"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Journal-Signature"

const defaultTimeout = 15 * time.Second

// Payload is the JSON body of every delivery. Text keeps the Telegram HTML
// markup the journal renders.
type Payload struct {
	Kind   notifier.Kind `json:"kind"`
	Title  string        `json:"title,omitempty"`
	Text   string        `json:"text"`
	SentAt time.Time     `json:"sent_at"`
}

// Webhook delivers messages to a single URL.
type Webhook struct {
	url     string
	headers map[string]string
	secret  []byte
	client  *http.Client
	now     func() time.Time
}

// New creates a webhook notifier. An empty secret disables signing.
func New(url string, headers map[string]string, secret string) *Webhook {
	w := &Webhook{url: url, headers: headers}
	if secret != "" {
		w.secret = []byte(secret)
	}
	w.defaults()
	return w
}

func (w *Webhook) defaults() {
	if w.client == nil {
		w.client = &http.Client{Timeout: defaultTimeout}
	}
	if w.now == nil {
		w.now = time.Now
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Init(cfg notifier.Config) error {
	if url, ok := cfg.Params["url"].(string); ok {
		w.url = url
	}
	if headers, ok := cfg.Params["headers"].(map[string]string); ok {
		w.headers = headers
	}
	if secret, ok := cfg.Params["secret"].(string); ok && secret != "" {
		w.secret = []byte(secret)
	}
	if w.url == "" {
		return fmt.Errorf("webhook: url is required")
	}
	w.defaults()
	return nil
}

func (w *Webhook) Send(ctx context.Context, msg notifier.Message) error {
	body, err := json.Marshal(Payload{
		Kind:   msg.Kind,
		Title:  msg.Title,
		Text:   msg.Text,
		SentAt: w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("webhook: encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	if w.secret != nil {
		req.Header.Set(SignatureHeader, Sign(w.secret, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: %s answered %d", w.url, resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body, the value receivers compare
// against SignatureHeader.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
