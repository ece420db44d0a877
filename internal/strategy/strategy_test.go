package strategy

import "testing"

func TestEqualWeight_EvenSplit(t *testing.T) {
	raw, err := EqualWeight{}.RawWeights([]bool{true, true, true, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}

	want := []uint64{2500, 2500, 2500, 2500}
	for i := range want {
		if raw[i] != want[i] {
			t.Errorf("entry %d = %d, want %d", i, raw[i], want[i])
		}
	}
}

func TestEqualWeight_RemainderToLowestIndices(t *testing.T) {
	raw, err := EqualWeight{}.RawWeights([]bool{true, true, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}

	// 10000 / 3 = 3333 rem 1; entry 0 takes the extra bps.
	want := []uint64{3334, 3333, 3333}
	var sum uint64
	for i := range want {
		sum += raw[i]
		if raw[i] != want[i] {
			t.Errorf("entry %d = %d, want %d", i, raw[i], want[i])
		}
	}
	if sum != 10000 {
		t.Errorf("sum = %d, want 10000", sum)
	}
}

func TestEqualWeight_SkipsInactive(t *testing.T) {
	raw, err := EqualWeight{}.RawWeights([]bool{true, false, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}

	if raw[1] != 0 {
		t.Errorf("inactive entry = %d, want 0", raw[1])
	}
	if raw[0]+raw[2] != 10000 {
		t.Errorf("active sum = %d, want 10000", raw[0]+raw[2])
	}
}

func TestEqualWeight_NoActive(t *testing.T) {
	raw, err := EqualWeight{}.RawWeights([]bool{false, false}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}
	if raw[0] != 0 || raw[1] != 0 {
		t.Errorf("got %v, want all zero", raw)
	}
}

func TestFixedSplit(t *testing.T) {
	f := FixedSplit{Weights: []uint64{6000, 4000}}
	raw, err := f.RawWeights([]bool{true, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}
	if raw[0] != 6000 || raw[1] != 4000 {
		t.Errorf("got %v, want [6000 4000]", raw)
	}

	// Returned slice must be a copy.
	raw[0] = 0
	if f.Weights[0] != 6000 {
		t.Error("RawWeights mutated the configured weights")
	}
}

func TestFixedSplit_LengthMismatch(t *testing.T) {
	f := FixedSplit{Weights: []uint64{6000}}
	if _, err := f.RawWeights([]bool{true, true}, 10000); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestScoreBased_Proportional(t *testing.T) {
	s := ScoreBased{Scores: []uint64{3, 1}}
	raw, err := s.RawWeights([]bool{true, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}
	if raw[0] != 7500 || raw[1] != 2500 {
		t.Errorf("got %v, want [7500 2500]", raw)
	}
}

func TestScoreBased_ZeroScoresFallsBackToEqual(t *testing.T) {
	s := ScoreBased{Scores: []uint64{0, 0}}
	raw, err := s.RawWeights([]bool{true, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}
	if raw[0] != 5000 || raw[1] != 5000 {
		t.Errorf("got %v, want [5000 5000]", raw)
	}
}

func TestScoreBased_IgnoresInactiveScores(t *testing.T) {
	s := ScoreBased{Scores: []uint64{1, 100, 1}}
	raw, err := s.RawWeights([]bool{true, false, true}, 10000)
	if err != nil {
		t.Fatalf("RawWeights failed: %v", err)
	}
	if raw[1] != 0 {
		t.Errorf("inactive entry = %d, want 0", raw[1])
	}
	if raw[0] != 5000 || raw[2] != 5000 {
		t.Errorf("got %v, want 5000 for each active entry", raw)
	}
}

func TestForMode(t *testing.T) {
	if _, err := ForMode(ModeEqual, nil, nil); err != nil {
		t.Errorf("equal mode failed: %v", err)
	}
	if _, err := ForMode(ModeFixed, []uint64{10000}, nil); err != nil {
		t.Errorf("fixed mode failed: %v", err)
	}
	if _, err := ForMode(ModeScore, nil, []uint64{1}); err != nil {
		t.Errorf("score mode failed: %v", err)
	}
	if _, err := ForMode(Mode("momentum"), nil, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}
