package correlation

import (
	"testing"
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func idFor(n byte) idgen.ID {
	var id idgen.ID
	id[15] = n
	return id
}

func TestHappyPath(t *testing.T) {
	// register then two links: Pending -> Received, both responses kept in order.
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := New(Options{Clock: clock})

	r1, s1, s2 := idFor(1), idFor(2), idFor(3)
	corr := []byte{0xCA, 0xFE}

	if !tr.RegisterRequest(r1, corr, "res/a", 0) {
		t.Fatal("RegisterRequest failed")
	}
	if got := tr.StatusOf(r1); got != Pending {
		t.Fatalf("status after register = %v, want Pending", got)
	}

	if !tr.LinkResponse(s1, corr, "res/a") {
		t.Fatal("first LinkResponse failed")
	}
	if got := tr.StatusOf(r1); got != Received {
		t.Fatalf("status after first link = %v, want Received", got)
	}

	if !tr.LinkResponse(s2, corr, "res/a") {
		t.Fatal("second LinkResponse failed")
	}
	if got := tr.StatusOf(r1); got != Received {
		t.Fatalf("status after second link = %v, want still Received", got)
	}

	responses := tr.ResponsesOf(r1)
	if len(responses) != 2 || responses[0] != s1 || responses[1] != s2 {
		t.Fatalf("responses = %+v, want [s1, s2]", responses)
	}
}

func TestTopicMismatch(t *testing.T) {
	// A response on the wrong topic never links.
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	r1, s1 := idFor(1), idFor(2)
	corr := []byte{0xCA, 0xFE}

	tr.RegisterRequest(r1, corr, "res/a", 0)
	if tr.LinkResponse(s1, corr, "res/b") {
		t.Fatal("link to mismatched topic should fail")
	}
	if got := tr.StatusOf(r1); got != Pending {
		t.Fatalf("status = %v, want Pending", got)
	}
	if responses := tr.ResponsesOf(r1); len(responses) != 0 {
		t.Fatalf("responses = %+v, want none", responses)
	}
}

func TestTTLSweep(t *testing.T) {
	// An expired entry sweeps to Hidden and emits the transition.
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := New(Options{Clock: clock})
	r1 := idFor(1)
	corr := []byte{0xBE, 0xEF}

	events, cancel := tr.Events().Subscribe()
	defer cancel()

	tr.RegisterRequest(r1, corr, "res/a", time.Second)
	clock.advance(1100 * time.Millisecond)

	n := tr.SweepExpired()
	if n != 1 {
		t.Fatalf("SweepExpired = %d, want 1", n)
	}
	if got := tr.StatusOf(r1); got != Hidden {
		t.Fatalf("status after sweep = %v, want Hidden", got)
	}

	<-events // Pending registration event
	select {
	case e := <-events:
		if e.To != Hidden || e.From != Pending {
			t.Fatalf("sweep event = %+v, want Pending->Hidden", e)
		}
	default:
		t.Fatal("expected a StatusChanged event for the sweep")
	}
}

func TestRegisterRequestRejectsInvalidArgs(t *testing.T) {
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	if tr.RegisterRequest(idgen.ID{}, []byte{1}, "res/a", 0) {
		t.Fatal("zero request id should be rejected")
	}
	if tr.RegisterRequest(idFor(1), nil, "res/a", 0) {
		t.Fatal("empty correlation data should be rejected")
	}
	if tr.RegisterRequest(idFor(1), []byte{1}, "", 0) {
		t.Fatal("empty response topic should be rejected")
	}
}

func TestRegisterRequestDuplicateCorrelationData(t *testing.T) {
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	corr := []byte{0x01}
	if !tr.RegisterRequest(idFor(1), corr, "res/a", 0) {
		t.Fatal("first register should succeed")
	}
	if tr.RegisterRequest(idFor(2), corr, "res/b", 0) {
		t.Fatal("duplicate correlation-data register should fail")
	}
}

func TestLinkResponseBeforeRequestFails(t *testing.T) {
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	if tr.LinkResponse(idFor(1), []byte{0x01}, "res/a") {
		t.Fatal("link before any registration should fail")
	}
}

func TestStatusOfUnknownRequest(t *testing.T) {
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	if got := tr.StatusOf(idFor(1)); got != Hidden {
		t.Fatalf("status of unknown request = %v, want Hidden", got)
	}
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	tr := New(Options{Clock: &fakeClock{now: time.Unix(0, 0)}})
	if n := tr.SweepExpired(); n != 0 {
		t.Fatalf("sweep on empty tracker = %d, want 0", n)
	}
}
