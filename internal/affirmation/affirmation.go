// Package affirmation picks the quirky affirmation of the day.
package affirmation

import "time"

// DateLayout is the canonical date form the selector hashes, e.g. "Sat Oct 17 2026".
const DateLayout = "Mon Jan 02 2006"

var affirmations = []string{
	"Your brain is a beautiful galaxy of potential - and you're the astronaut!",
	"Like a potato, you might be dirty on the outside but golden when opened up.",
	"If life throws lemons, remember you can make... a lemon battery for science!",
	"Your mind is like a garden where intrusive thoughts are just weeds - pull 'em out!",
	"You're not a mess, you're a complex algorithm processing in real-time.",
	"Your feelings are valid, even the one where you want to hug your pillow forever.",
	"Remember: Even the mightiest oak was once a little nut that held its ground.",
	"Your anxiety is just excitement in disguise - you're a thrilling adventure!",
	"When you feel lost, remember that all explorers felt the same before great discoveries!",
	"Mental health days are like system updates - sometimes you need to restart.",
	"You're not overthinking, you're just beta-testing multiple life scenarios.",
	"Bad days are just plot twists in your character development arc.",
}

// All returns a copy of the affirmation list.
func All() []string {
	return append([]string(nil), affirmations...)
}

// Pick returns the affirmation for the calendar date of d. Only the date in
// d's own location matters; the time of day never changes the result.
func Pick(d time.Time) string {
	return affirmations[Index(d)]
}

// Index returns the list position Pick uses for d.
func Index(d time.Time) int {
	return Seed(d) % len(affirmations)
}

// Seed sums the character codes of the canonical date string.
func Seed(d time.Time) int {
	seed := 0
	for _, r := range d.Format(DateLayout) {
		seed += int(r)
	}
	return seed
}
