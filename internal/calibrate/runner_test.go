package calibrate

import "testing"

func completeRun(t *testing.T, r *Runner, latencies []float64) {
	t.Helper()
	for i, l := range latencies {
		done := r.RecordTap(l)
		wantDone := i == len(latencies)-1
		if done != wantDone {
			t.Fatalf("tap %d: done = %v, want %v", i, done, wantDone)
		}
	}
}

func TestStartReturnsTrialCount(t *testing.T) {
	r := NewRunner()
	if got := r.Start(4); got != TrialCount {
		t.Errorf("Start = %d, want %d", got, TrialCount)
	}
	if !r.Active() {
		t.Error("runner should be active after Start")
	}
	if r.Trial() != 0 {
		t.Errorf("Trial = %d, want 0", r.Trial())
	}
}

func TestTargetsAvoidImmediateRepeats(t *testing.T) {
	r := NewRunner()
	for run := 0; run < 50; run++ {
		r.Start(4)
		prev := -1
		for i := 0; i < TrialCount; i++ {
			target := r.Target()
			if target < 0 || target >= 4 {
				t.Fatalf("trial %d: target %d out of range", i, target)
			}
			if target == prev {
				t.Fatalf("trial %d repeats target %d", i, target)
			}
			prev = target
			r.RecordTap(300)
		}
	}
}

func TestTargetSingleControl(t *testing.T) {
	r := NewRunner()
	r.Start(1)
	for i := 0; i < TrialCount; i++ {
		if got := r.Target(); got != 0 {
			t.Fatalf("trial %d: target = %d, want 0", i, got)
		}
		r.RecordTap(300)
	}
	if got := r.Target(); got != -1 {
		t.Errorf("target after completion = %d, want -1", got)
	}
}

func TestBaselineIsMedian(t *testing.T) {
	r := NewRunner()
	r.Start(4)
	// One fumbled 2s tap must not skew the result.
	completeRun(t, r, []float64{310, 290, 2000, 300, 305, 295, 320})
	got, ok := r.Baseline()
	if !ok {
		t.Fatal("expected a baseline from a complete run")
	}
	if got != 305 {
		t.Errorf("baseline = %v, want 305", got)
	}
}

func TestBaselineUnavailableMidRun(t *testing.T) {
	r := NewRunner()
	r.Start(4)
	r.RecordTap(300)
	r.RecordTap(310)
	if _, ok := r.Baseline(); ok {
		t.Error("baseline should be unavailable mid-run")
	}
}

func TestNegativeLatencyClampedToZero(t *testing.T) {
	r := NewRunner()
	r.Start(4)
	completeRun(t, r, []float64{-50, -50, -50, -50, -50, -50, -50})
	got, ok := r.Baseline()
	if !ok {
		t.Fatal("expected a baseline")
	}
	if got != 0 {
		t.Errorf("baseline = %v, want 0", got)
	}
}

func TestAbandonDiscardsRun(t *testing.T) {
	r := NewRunner()
	r.Start(4)
	r.RecordTap(300)
	r.Abandon()
	if r.Active() {
		t.Error("runner should be inactive after Abandon")
	}
	if _, ok := r.Baseline(); ok {
		t.Error("abandoned run must not produce a baseline")
	}
	if done := r.RecordTap(300); done {
		t.Error("taps outside a run should be ignored")
	}
	if got := r.Target(); got != -1 {
		t.Errorf("target after Abandon = %d, want -1", got)
	}
}

func TestRestartDiscardsPartialRun(t *testing.T) {
	r := NewRunner()
	r.Start(4)
	r.RecordTap(9000)
	r.RecordTap(9000)
	r.Start(4)
	if r.Trial() != 0 {
		t.Errorf("Trial after restart = %d, want 0", r.Trial())
	}
	completeRun(t, r, []float64{300, 300, 300, 300, 300, 300, 300})
	got, ok := r.Baseline()
	if !ok {
		t.Fatal("expected a baseline")
	}
	if got != 300 {
		t.Errorf("baseline = %v, want 300 (stale taps must not leak)", got)
	}
}
