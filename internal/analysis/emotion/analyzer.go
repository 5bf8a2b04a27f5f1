package emotion

import (
	"math"
	"strings"
)

// Label 表示日记或对话中识别出的情绪基调。
type Label string

const (
	Neutral  Label = "neutral"
	Happy    Label = "happy"
	Grateful Label = "grateful"
	Sad      Label = "sad"
	Anxious  Label = "anxious"
	Angry    Label = "angry"
	Tired    Label = "tired"
)

// Decision 给出情绪识别结果以及强度（1~5）。
type Decision struct {
	Tone      Label   `json:"tone"`
	Intensity float32 `json:"intensity"`
	Score     int     `json:"score"`
}

// SuggestedLevel maps the tone onto the five mood levels (0 Sad … 4 Great).
func (d Decision) SuggestedLevel() int {
	switch d.Tone {
	case Sad:
		return 0
	case Anxious, Angry, Tired:
		return 1
	case Grateful:
		return 3
	case Happy:
		return 4
	default:
		return 2
	}
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"happy", "great day", "amazing", "awesome", "excited", "joy", "fun", "laughed", "proud",
		"wonderful", "fantastic", "love", "celebrate", "good news", "yay",
	},
	Grateful: {
		"grateful", "thankful", "thank you", "thanks", "appreciate", "blessed", "lucky", "kind of them",
	},
	Sad: {
		"sad", "cry", "cried", "lonely", "alone", "hurt", "miss", "lost", "grief", "heartbroken",
		"depressed", "hopeless", "empty", "down", "upset",
	},
	Anxious: {
		"anxious", "anxiety", "worried", "worry", "nervous", "panic", "stress", "stressed", "overwhelmed",
		"scared", "afraid", "overthinking", "can't stop thinking", "deadline",
	},
	Angry: {
		"angry", "furious", "mad", "annoyed", "frustrated", "irritated", "hate", "unfair", "fed up",
	},
	Tired: {
		"tired", "exhausted", "drained", "burnt out", "burned out", "no energy", "sleepy", "couldn't sleep",
		"insomnia", "worn out",
	},
}

var punctuationBoost = map[Label]int{
	Happy: 2,
}

// Analyze 根据日记原文与 AI 摘要推断整体基调；摘要缺乏明显情绪时以原文为准。
func Analyze(entry, summary string) Decision {
	entryScore := scoreText(entry)
	summaryScore := scoreText(summary)

	finalScore := summaryScore
	if finalScore.Score == 0 || (entryScore.Score > 0 && entryScore.Score >= finalScore.Score) {
		finalScore = coerceFromEntry(entryScore, summaryScore)
	}

	if finalScore.Score == 0 {
		return Decision{Tone: Neutral, Intensity: 3, Score: 0}
	}

	intensity := 2 + float32(finalScore.Score)/4
	if finalScore.Tone == Grateful || finalScore.Tone == Tired {
		intensity = float32(math.Min(3.5, float64(intensity)))
	}
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 5 {
		intensity = 5
	}

	return Decision{Tone: finalScore.Tone, Intensity: intensity, Score: finalScore.Score}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Tone: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 && scores[Happy] > 0 {
		scores[Happy] += exclamations * punctuationBoost[Happy]
	}

	best := Neutral
	bestScore := 0
	for _, label := range []Label{Sad, Anxious, Angry, Tired, Grateful, Happy} {
		if s := scores[label]; s > bestScore {
			bestScore = s
			best = label
		}
	}

	return Decision{Tone: best, Score: bestScore}
}

// coerceFromEntry keeps the writer's own tone when the summary is flat or weaker.
func coerceFromEntry(entry, summary Decision) Decision {
	if entry.Score == 0 {
		return summary
	}
	return entry
}
