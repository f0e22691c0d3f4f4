package services

import (
	"testing"
	"time"

	types "github.com/lumenlearn/lumen-backend/internal/domain"
)

func TestApplyOutcomeCorrectAndIncorrectSteps(t *testing.T) {
	p := DefaultMasteryParams()
	now := time.Now().UTC()

	st := &types.StudentSkillState{ProbabilityMastery: 0.5}

	ApplyOutcome(st, true, 1, now, p)
	if st.ProbabilityMastery != 0.6 {
		t.Fatalf("after correct: probability=%v want=0.6", st.ProbabilityMastery)
	}
	if st.ConsecutiveCorrect != 1 || st.ConsecutiveIncorrect != 0 {
		t.Fatalf("after correct: streaks=%d/%d", st.ConsecutiveCorrect, st.ConsecutiveIncorrect)
	}
	if st.TotalAttempts != 1 || st.CorrectAttempts != 1 {
		t.Fatalf("after correct: attempts=%d correct=%d", st.TotalAttempts, st.CorrectAttempts)
	}
	if st.LastAttemptAt == nil || !st.LastAttemptAt.Equal(now) {
		t.Fatalf("last_attempt_at not set")
	}

	ApplyOutcome(st, false, 1, now, p)
	if st.ProbabilityMastery != 0.55 {
		t.Fatalf("after incorrect: probability=%v want=0.55", st.ProbabilityMastery)
	}
	if st.ConsecutiveCorrect != 0 || st.ConsecutiveIncorrect != 1 {
		t.Fatalf("after incorrect: streaks=%d/%d", st.ConsecutiveCorrect, st.ConsecutiveIncorrect)
	}
	if st.TotalAttempts != 2 || st.CorrectAttempts != 1 {
		t.Fatalf("after incorrect: attempts=%d correct=%d", st.TotalAttempts, st.CorrectAttempts)
	}
}

func TestApplyOutcomeClampsAtBounds(t *testing.T) {
	p := DefaultMasteryParams()
	now := time.Now().UTC()

	st := &types.StudentSkillState{ProbabilityMastery: 0.97}
	ApplyOutcome(st, true, 1, now, p)
	if st.ProbabilityMastery != 1.0 {
		t.Fatalf("upper clamp: probability=%v want=1.0", st.ProbabilityMastery)
	}

	st = &types.StudentSkillState{ProbabilityMastery: 0.03}
	ApplyOutcome(st, false, 1, now, p)
	if st.ProbabilityMastery != 0 {
		t.Fatalf("lower clamp: probability=%v want=0", st.ProbabilityMastery)
	}
}

func TestApplyOutcomeFiveIncorrectFromSeed(t *testing.T) {
	p := DefaultMasteryParams()
	now := time.Now().UTC()

	st := &types.StudentSkillState{ProbabilityMastery: p.SeedProbability}
	for i := 0; i < 5; i++ {
		ApplyOutcome(st, false, 1, now, p)
	}
	if diff := st.ProbabilityMastery - 0.25; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("after 5 incorrect: probability=%v want=0.25", st.ProbabilityMastery)
	}
	if st.ConsecutiveIncorrect != 5 || st.ConsecutiveCorrect != 0 {
		t.Fatalf("streaks=%d/%d", st.ConsecutiveCorrect, st.ConsecutiveIncorrect)
	}
	if Classify(p, st.ProbabilityMastery, st.TotalAttempts) != types.StatusStruggling {
		t.Fatalf("expected STRUGGLING at %v after %d attempts", st.ProbabilityMastery, st.TotalAttempts)
	}
}

func TestApplyOutcomeAttemptsFloor(t *testing.T) {
	p := DefaultMasteryParams()
	st := &types.StudentSkillState{}
	ApplyOutcome(st, true, 0, time.Now(), p)
	if st.TotalAttempts != 1 {
		t.Fatalf("attempts floor: total=%d want=1", st.TotalAttempts)
	}
}

func TestClassifyThresholdsAreStrict(t *testing.T) {
	p := DefaultMasteryParams()

	cases := []struct {
		name        string
		probability float64
		attempts    int
		want        string
	}{
		{"above mastered", 0.91, 10, types.StatusMastered},
		{"exactly mastered threshold", 0.9, 10, types.StatusLearning},
		{"exactly struggling threshold", 0.6, 10, types.StatusLearning},
		{"below threshold enough attempts", 0.59, 4, types.StatusStruggling},
		{"below threshold too few attempts", 0.3, 3, types.StatusLearning},
		{"mid range", 0.7, 8, types.StatusLearning},
		{"zero attempts", 0.5, 0, types.StatusLearning},
	}
	for _, tc := range cases {
		if got := Classify(p, tc.probability, tc.attempts); got != tc.want {
			t.Errorf("%s: Classify(%v, %d)=%s want=%s", tc.name, tc.probability, tc.attempts, got, tc.want)
		}
	}
}

func TestSuggestedAction(t *testing.T) {
	if got := SuggestedAction(types.StatusStruggling); got != "provide remediation" {
		t.Fatalf("struggling: %q", got)
	}
	if got := SuggestedAction(types.StatusMastered); got != "ready for next challenge" {
		t.Fatalf("mastered: %q", got)
	}
	if got := SuggestedAction(types.StatusLearning); got != "continue practice" {
		t.Fatalf("learning: %q", got)
	}
}
