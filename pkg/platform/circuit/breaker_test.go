package circuit

import "testing"

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New(WithFailureThreshold(3))

	if b.RecordFailure() || b.RecordFailure() {
		t.Fatal("circuit must stay closed below the threshold")
	}
	if !b.RecordFailure() {
		t.Fatal("third consecutive failure must open the circuit")
	}
	if !b.IsOpen() {
		t.Fatal("circuit must report open")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New(WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	if b.RecordFailure() {
		t.Fatal("failure count must reset after a success")
	}
}

func TestBreakerClosesAfterProbeSuccesses(t *testing.T) {
	b := New(WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	if !b.IsOpen() {
		t.Fatal("precondition: open")
	}

	if b.RecordSuccess() {
		t.Fatal("one success must not close the circuit yet")
	}
	if !b.RecordSuccess() {
		t.Fatal("second success must close the circuit")
	}
	if b.IsOpen() {
		t.Fatal("circuit must report closed")
	}
}

func TestBreakerReset(t *testing.T) {
	b := New(WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	if b.IsOpen() {
		t.Fatal("reset must close the circuit")
	}
}
