package emotion

import "testing"

func TestAnalyzeSadEntry(t *testing.T) {
	decision := Analyze("I felt so lonely today and cried after work", "It sounds like a heavy day.")
	if decision.Tone != Sad {
		t.Fatalf("expected sad tone, got %s", decision.Tone)
	}
	if decision.SuggestedLevel() != 0 {
		t.Fatalf("expected level 0, got %d", decision.SuggestedLevel())
	}
	if decision.Intensity < 1 || decision.Intensity > 5 {
		t.Fatalf("intensity out of range: %f", decision.Intensity)
	}
}

func TestAnalyzeAnxiousEntry(t *testing.T) {
	decision := Analyze("So stressed about the deadline, I keep overthinking everything", "")
	if decision.Tone != Anxious {
		t.Fatalf("expected anxious tone, got %s", decision.Tone)
	}
	if decision.SuggestedLevel() != 1 {
		t.Fatalf("expected level 1, got %d", decision.SuggestedLevel())
	}
}

func TestAnalyzeHappyEntryWithExclamations(t *testing.T) {
	decision := Analyze("Had an amazing day with friends!!", "")
	if decision.Tone != Happy {
		t.Fatalf("expected happy tone, got %s", decision.Tone)
	}
	if decision.Intensity <= 2 {
		t.Fatalf("expected boosted intensity, got %f", decision.Intensity)
	}
}

func TestAnalyzeFlatTextIsNeutral(t *testing.T) {
	decision := Analyze("Went to the store and bought bread.", "")
	if decision.Tone != Neutral || decision.SuggestedLevel() != 2 {
		t.Fatalf("expected neutral, got %+v", decision)
	}
}

func TestAnalyzeSummaryUsedWhenEntryFlat(t *testing.T) {
	decision := Analyze("Wrote some notes.", "You seem grateful for the small things.")
	if decision.Tone != Grateful {
		t.Fatalf("expected grateful from summary, got %s", decision.Tone)
	}
}
