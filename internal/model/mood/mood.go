package mood

import "time"

// Level is a point on the five-step mood scale, 0 (Sad) to 4 (Great).
type Level int

const (
	Sad Level = iota
	Down
	Neutral
	Good
	Great
)

// LevelInfo describes how a level is presented.
type LevelInfo struct {
	Value Level  `json:"value"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

var levels = []LevelInfo{
	{Value: Sad, Label: "Sad", Emoji: "😢"},
	{Value: Down, Label: "Down", Emoji: "😔"},
	{Value: Neutral, Label: "Neutral", Emoji: "😐"},
	{Value: Good, Label: "Good", Emoji: "🙂"},
	{Value: Great, Label: "Great", Emoji: "😁"},
}

// Levels returns the scale in ascending order.
func Levels() []LevelInfo {
	return append([]LevelInfo(nil), levels...)
}

// Valid reports whether l lies on the scale.
func (l Level) Valid() bool {
	return l >= Sad && l <= Great
}

// Info returns the presentation of l. Callers check Valid first.
func (l Level) Info() LevelInfo {
	if !l.Valid() {
		return LevelInfo{Value: l}
	}
	return levels[l]
}

func (l Level) String() string {
	return l.Info().Label
}

// Record is one submitted mood.
type Record struct {
	ID         string    `json:"id"`
	Level      Level     `json:"level"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Sample is one bar of the weekly chart; Level is nil when the day has no data.
type Sample struct {
	Day   string `json:"day"`
	Level *Level `json:"level"`
}
