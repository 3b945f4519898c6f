package topicdelete

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakePublisher struct {
	published []string
	fail      map[string]error
	onPublish func(topic string)
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload []byte, retain bool, qos byte) error {
	if p.onPublish != nil {
		p.onPublish(topic)
	}
	if err, ok := p.fail[topic]; ok {
		return err
	}
	if payload != nil || !retain {
		return errors.New("delete publish must be empty and retained")
	}
	p.published = append(p.published, topic)
	return nil
}

type fakeLister struct {
	topics []string
}

func (l *fakeLister) Topics() []string { return l.topics }

func TestDeleterExactTopic(t *testing.T) {
	pub := &fakePublisher{}
	d := New(pub, &fakeLister{}, zerolog.Nop())

	res := d.Run(context.Background(), "home/sensors/temp")

	if len(res.Successful) != 1 || res.Successful[0] != "home/sensors/temp" {
		t.Fatalf("Successful = %v, want [home/sensors/temp]", res.Successful)
	}
	if len(res.Failed) != 0 || len(res.Cancelled) != 0 {
		t.Errorf("unexpected failures %v or cancellations %v", res.Failed, res.Cancelled)
	}
}

func TestDeleterWildcardExpandsObservedTopics(t *testing.T) {
	pub := &fakePublisher{}
	lister := &fakeLister{topics: []string{"home/a/temp", "home/b/temp", "office/a/temp"}}
	d := New(pub, lister, zerolog.Nop())

	res := d.Run(context.Background(), "home/+/temp")

	if len(res.Successful) != 2 {
		t.Fatalf("Successful = %v, want the two home topics", res.Successful)
	}
	for _, topic := range res.Successful {
		if topic == "office/a/temp" {
			t.Error("wildcard must not leak outside its pattern")
		}
	}
}

func TestDeleterClassifiesFailures(t *testing.T) {
	pub := &fakePublisher{fail: map[string]error{
		"home/a": errors.New("not authorized"),
		"home/b": context.DeadlineExceeded,
	}}
	lister := &fakeLister{topics: []string{"home/a", "home/b", "home/c"}}
	d := New(pub, lister, zerolog.Nop())

	res := d.Run(context.Background(), "home/+")

	if len(res.Successful) != 1 || res.Successful[0] != "home/c" {
		t.Fatalf("Successful = %v, want [home/c]", res.Successful)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("Failed = %v, want two entries", res.Failed)
	}
	byTopic := make(map[string]Failure)
	for _, f := range res.Failed {
		byTopic[f.Topic] = f
	}
	if f := byTopic["home/a"]; f.Class != ClassPermissionDenied || f.Retryable {
		t.Errorf("home/a classified %v retryable=%v, want PermissionDenied non-retryable", f.Class, f.Retryable)
	}
	if f := byTopic["home/b"]; f.Class != ClassTimeout || !f.Retryable {
		t.Errorf("home/b classified %v retryable=%v, want Timeout retryable", f.Class, f.Retryable)
	}
}

func TestDeleterCancellationReportsPartialProgress(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pub := &fakePublisher{}
	pub.onPublish = func(topic string) {
		if topic == "home/b" {
			cancel()
		}
	}
	lister := &fakeLister{topics: []string{"home/a", "home/b", "home/c", "home/d"}}
	d := New(pub, lister, zerolog.Nop())

	res := d.Run(ctx, "home/+")

	if len(res.Successful) != 2 {
		t.Fatalf("Successful = %v, want the first two topics", res.Successful)
	}
	if len(res.Cancelled) != 2 {
		t.Fatalf("Cancelled = %v, want the two unattempted topics", res.Cancelled)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Failed = %v, want none", res.Failed)
	}
}
