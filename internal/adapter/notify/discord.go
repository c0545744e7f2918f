package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// defaultRetryIntervals are the waits before the second, third and fourth
// delivery attempts.
var defaultRetryIntervals = []time.Duration{
	2 * time.Second,
	10 * time.Second,
	30 * time.Second,
}

// Discord allows roughly 30 webhook posts per minute per channel.
const (
	defaultPostRate  = rate.Limit(0.5)
	defaultPostBurst = 5
)

const (
	colorInfo    = 0x2ecc71
	colorFailure = 0xe74c3c
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordSink delivers events to a Discord webhook from a background
// goroutine. Emit only enqueues; a full queue drops the event.
type DiscordSink struct {
	url     string
	client  HTTPClient
	queue   chan domain.WalletEvent
	retry   []time.Duration
	limiter *rate.Limiter
	log     zerolog.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ ports.EventSink = (*DiscordSink)(nil)

// Option configures a DiscordSink.
type Option func(*DiscordSink)

// WithRetryIntervals overrides the waits between delivery attempts.
func WithRetryIntervals(intervals ...time.Duration) Option {
	return func(s *DiscordSink) { s.retry = intervals }
}

// WithRateLimit overrides the pacing of webhook posts.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *DiscordSink) { s.limiter = rate.NewLimiter(limit, burst) }
}

// NewDiscordSink starts the delivery goroutine. Call Close to stop it.
func NewDiscordSink(url string, client HTTPClient, queueSize int, log zerolog.Logger, opts ...Option) *DiscordSink {
	if queueSize <= 0 {
		queueSize = 1
	}
	s := &DiscordSink{
		url:     url,
		client:  client,
		queue:   make(chan domain.WalletEvent, queueSize),
		retry:   defaultRetryIntervals,
		limiter: rate.NewLimiter(defaultPostRate, defaultPostBurst),
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Emit enqueues the event without blocking.
func (s *DiscordSink) Emit(_ context.Context, event domain.WalletEvent) {
	select {
	case <-s.stop:
		s.log.Warn().Str("kind", string(event.Kind)).Msg("discord: sink closed, event dropped")
		return
	default:
	}

	select {
	case s.queue <- event:
	default:
		s.log.Warn().Str("kind", string(event.Kind)).Str("handle", event.Handle).Msg("discord: queue full, event dropped")
	}
}

// Close stops accepting events and makes one final attempt for anything
// still queued, bounded by ctx.
func (s *DiscordSink) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DiscordSink) run() {
	defer close(s.done)
	for {
		select {
		case ev := <-s.queue:
			s.deliverWithRetries(ev)
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *DiscordSink) drain() {
	for {
		select {
		case ev := <-s.queue:
			if _, err := s.post(ev); err != nil {
				s.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("discord: final delivery failed")
			}
		default:
			return
		}
	}
}

// deliverWithRetries posts the event, retrying transport errors, 429 and 5xx.
func (s *DiscordSink) deliverWithRetries(ev domain.WalletEvent) {
	for attempt := 0; attempt <= len(s.retry); attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(s.retry[attempt-1])
			select {
			case <-timer.C:
			case <-s.stop:
				timer.Stop()
				s.log.Warn().Str("kind", string(ev.Kind)).Int("attempt", attempt+1).Msg("discord: shutting down, retry abandoned")
				return
			}
		}

		if !s.pace() {
			s.log.Warn().Str("kind", string(ev.Kind)).Int("attempt", attempt+1).Msg("discord: shutting down, delivery abandoned")
			return
		}

		retryable, err := s.post(ev)
		if err == nil {
			s.log.Debug().Str("kind", string(ev.Kind)).Int("attempt", attempt+1).Msg("discord: delivered")
			return
		}
		if !retryable {
			s.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("discord: delivery rejected")
			return
		}
		s.log.Warn().Err(err).Str("kind", string(ev.Kind)).Int("attempt", attempt+1).Msg("discord: delivery failed, retrying")
	}
	s.log.Error().Str("kind", string(ev.Kind)).Msg("discord: all retry attempts exhausted")
}

// pace waits for the limiter to admit another post. It returns false when the
// sink is stopping.
func (s *DiscordSink) pace() bool {
	r := s.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.stop:
		r.Cancel()
		return false
	}
}

func (s *DiscordSink) post(ev domain.WalletEvent) (retryable bool, err error) {
	body, err := json.Marshal(renderDiscord(ev))
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return true, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}
}

func renderDiscord(ev domain.WalletEvent) discordMessage {
	embed := discordEmbed{
		Title:     string(ev.Kind),
		Color:     colorInfo,
		Timestamp: ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	if ev.Kind == domain.EventOperationFailed {
		embed.Color = colorFailure
		embed.Description = ev.Error
	}
	if ev.Handle != "" {
		embed.Fields = append(embed.Fields, discordField{Name: "handle", Value: ev.Handle, Inline: true})
	}
	if ev.Operation != "" {
		embed.Fields = append(embed.Fields, discordField{Name: "operation", Value: ev.Operation, Inline: true})
	}

	keys := make([]string, 0, len(ev.Attributes))
	for k := range ev.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		embed.Fields = append(embed.Fields, discordField{Name: k, Value: ev.Attributes[k]})
	}

	return discordMessage{Username: "agent-chain", Embeds: []discordEmbed{embed}}
}
