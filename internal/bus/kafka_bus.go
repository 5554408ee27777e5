package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/streetmarket/market/internal/envelope"
	"github.com/streetmarket/market/internal/factory"
	"github.com/streetmarket/market/internal/topics"
)

const (
	connectMaxAttempts = 10
	connectRetryDelay  = 2300 * time.Millisecond
)

// KafkaBus is the production Bus implementation. Kafka has no native
// hierarchical-wildcard subject matching, so a `/>`-suffixed Subscribe
// pattern is served by enumerating the canonical topic set and opening one
// reader per matching topic, funnelling all of them into a single
// serialized delivery goroutine per subscription.
type KafkaBus struct {
	serviceName string
	brokers     []string

	mu      sync.Mutex
	writer  *kafka.Writer
	readers []*kafka.Reader
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool

	breaker *CircuitBreaker
}

// NewKafkaBus constructs a bus client for serviceName talking to brokers.
func NewKafkaBus(serviceName string, brokers []string) *KafkaBus {
	return &KafkaBus{
		serviceName: serviceName,
		brokers:     brokers,
		breaker:     DefaultCircuitBreaker(serviceName),
	}
}

// Connect waits for the broker to accept connections, retrying with bounded
// backoff — at least ten attempts spanning roughly twenty seconds — before
// returning a fatal error.
func (b *KafkaBus) Connect(ctx context.Context) error {
	addr := b.brokers[0]

	var lastErr error
	for attempt := 1; attempt <= connectMaxAttempts; attempt++ {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err == nil {
			_, err = conn.Controller()
			conn.Close()
			if err == nil {
				log.Printf("[%s] bus ready after %d attempt(s)", b.serviceName, attempt)
				b.writer = &kafka.Writer{
					Addr:                   kafka.TCP(b.brokers...),
					Balancer:               &kafka.LeastBytes{},
					AllowAutoTopicCreation: true,
					BatchTimeout:           10 * time.Millisecond,
				}
				return nil
			}
		}
		lastErr = err

		if attempt < connectMaxAttempts {
			log.Printf("[%s] bus not ready (attempt %d/%d): %v, retrying in %v", b.serviceName, attempt, connectMaxAttempts, lastErr, connectRetryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(connectRetryDelay):
			}
		}
	}

	return fmt.Errorf("bus not ready after %d attempts: %w", connectMaxAttempts, lastErr)
}

// Publish sends env on topic, guarded by a circuit breaker so a wedged
// broker fails fast instead of blocking the caller indefinitely.
func (b *KafkaBus) Publish(ctx context.Context, topic string, env envelope.Envelope) error {
	if b.writer == nil {
		return fmt.Errorf("bus not connected")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	subject := topics.ToBusSubject(topic)
	return b.breaker.Call(func() error {
		return b.writer.WriteMessages(ctx, kafka.Message{
			Topic: subject,
			Key:   []byte(env.From),
			Value: data,
		})
	})
}

// Subscribe registers handler for every canonical topic matching pattern.
func (b *KafkaBus) Subscribe(ctx context.Context, pattern string, handler Handler) error {
	matched := matchingTopics(pattern)
	if len(matched) == 0 {
		return fmt.Errorf("pattern %q matches no canonical topic", pattern)
	}

	subCtx, cancel := context.WithCancel(ctx)
	delivery := make(chan envelope.Envelope, 256)

	b.mu.Lock()
	if b.cancel == nil {
		b.cancel = cancel
	}
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-subCtx.Done():
				return
			case env := <-delivery:
				if err := handler(env); err != nil {
					log.Printf("[%s] handler error on %s: %v", b.serviceName, env.Topic, err)
				}
			}
		}
	}()

	for _, t := range matched {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     b.brokers,
			Topic:       topics.ToBusSubject(t),
			GroupID:     fmt.Sprintf("%s-%s", b.serviceName, topics.ToBusSubject(t)),
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    10e6,
		})

		b.mu.Lock()
		b.readers = append(b.readers, reader)
		b.mu.Unlock()

		b.wg.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer b.wg.Done()
			for {
				msg, err := r.ReadMessage(subCtx)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					log.Printf("[%s] read error on %s: %v", b.serviceName, topic, err)
					continue
				}

				env, err := factory.ParseMessage(msg.Value)
				if err != nil {
					log.Printf("[%s] malformed envelope on %s: %v", b.serviceName, topic, err)
					continue
				}

				select {
				case delivery <- env:
				case <-subCtx.Done():
					return
				}
			}
		}(t, reader)
	}

	return nil
}

// Close drains subscriptions and closes the writer and every reader.
func (b *KafkaBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	cancel := b.cancel
	readers := b.readers
	writer := b.writer
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()

	var firstErr error
	for _, r := range readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// matchingTopics resolves a Subscribe pattern against the canonical topic
// set. A non-wildcard pattern that names an ad-hoc topic (e.g. a per-agent
// inbox) is passed through unchanged.
func matchingTopics(pattern string) []string {
	if !strings.HasSuffix(pattern, "/>") {
		return []string{pattern}
	}

	var out []string
	for _, t := range topics.All() {
		if topics.MatchesPattern(pattern, t) {
			out = append(out, t)
		}
	}
	return out
}
