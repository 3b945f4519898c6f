// Package topicdelete clears broker-retained state for an exact topic or a
// wildcard pattern by publishing empty retained messages. A wildcard run
// fans out over every topic the session has observed (the engine never
// enumerates broker-side retained topics), honors cancellation, and
// reports partial progress with per-topic failure classification.
package topicdelete

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog"
)

// Publisher is the outbound MQTT surface the deleter needs. Implemented by
// mqttclient.Client.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool, qos byte) error
}

// TopicLister enumerates the topics this session has observed, the only
// universe a wildcard pattern can expand over. Implemented by
// topicstore.Store.
type TopicLister interface {
	Topics() []string
}

// FailureClass categorizes why a single topic's delete publish failed.
type FailureClass string

const (
	ClassTimeout          FailureClass = "Timeout"
	ClassNetworkError     FailureClass = "NetworkError"
	ClassBrokerError      FailureClass = "BrokerError"
	ClassPermissionDenied FailureClass = "PermissionDenied"
	ClassInvalidTopic     FailureClass = "InvalidTopic"
	ClassUnknown          FailureClass = "Unknown"
)

// Failure records one topic whose delete publish failed.
type Failure struct {
	Topic     string
	Class     FailureClass
	Retryable bool
	Err       error
}

// Result is the outcome of one Run: which topics were cleared, which
// failed and why, and which were never attempted because the run was
// cancelled mid-way.
type Result struct {
	Successful []string
	Failed     []Failure
	Cancelled  []string
}

// Deleter executes retained-message deletion runs against a publisher.
type Deleter struct {
	pub    Publisher
	topics TopicLister
	log    zerolog.Logger
}

// New builds a Deleter.
func New(pub Publisher, topics TopicLister, log zerolog.Logger) *Deleter {
	return &Deleter{pub: pub, topics: topics, log: log}
}

// Run clears retained state for pattern. An exact topic is published
// against directly; a wildcard pattern expands over the observed topic
// set first. Cancellation stops the run between topics — the publish in
// flight completes or fails on its own, and every unattempted topic is
// reported in Cancelled.
func (d *Deleter) Run(ctx context.Context, pattern string) Result {
	targets := d.expand(pattern)
	var res Result

	for i, topic := range targets {
		select {
		case <-ctx.Done():
			res.Cancelled = append(res.Cancelled, targets[i:]...)
			d.log.Info().Str("pattern", pattern).Int("remaining", len(targets)-i).Msg("topicdelete: run cancelled")
			return res
		default:
		}

		if err := d.pub.Publish(ctx, topic, nil, true, 0); err != nil {
			class, retryable := classify(err)
			res.Failed = append(res.Failed, Failure{Topic: topic, Class: class, Retryable: retryable, Err: err})
			d.log.Warn().Err(err).Str("topic", topic).Str("class", string(class)).Msg("topicdelete: publish failed")
			continue
		}
		res.Successful = append(res.Successful, topic)
	}
	return res
}

func (d *Deleter) expand(pattern string) []string {
	if !HasWildcard(pattern) {
		return []string{pattern}
	}
	var out []string
	for _, topic := range d.topics.Topics() {
		if Match(pattern, topic) {
			out = append(out, topic)
		}
	}
	return out
}

// classify maps a publish error onto the failure taxonomy and decides
// whether retrying the same topic could help.
func classify(err error) (FailureClass, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout, true
		}
		return ClassNetworkError, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ClassNetworkError, true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not authorized"), strings.Contains(msg, "permission"):
		return ClassPermissionDenied, false
	case strings.Contains(msg, "topic name invalid"), strings.Contains(msg, "invalid topic"):
		return ClassInvalidTopic, false
	case strings.Contains(msg, "reason code"), strings.Contains(msg, "server"):
		return ClassBrokerError, true
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"), strings.Contains(msg, "broken pipe"):
		return ClassNetworkError, true
	}
	return ClassUnknown, false
}
