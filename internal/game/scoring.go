package game

const (
	pointsCorrect    = 3
	bonusQuickSolve  = 1 // solved on the player's 1st or 2nd guess of the round
	bonusFirstSolver = 1
)

// Colorize classifies each letter of guess against word. Both must have the
// same length. Exact matches are resolved first so a repeated guess letter
// never claims more word letters than the word contains.
func Colorize(guess, word string) []Color {
	n := len(word)
	colors := make([]Color, n)
	used := make([]bool, n)
	for i := range colors {
		colors[i] = ColorAbsent
	}
	for i := 0; i < n && i < len(guess); i++ {
		if guess[i] == word[i] {
			colors[i] = ColorCorrect
			used[i] = true
		}
	}
	for i := 0; i < n && i < len(guess); i++ {
		if colors[i] == ColorCorrect {
			continue
		}
		for j := 0; j < n; j++ {
			if !used[j] && guess[i] == word[j] {
				colors[i] = ColorPresent
				used[j] = true
				break
			}
		}
	}
	return colors
}

func Solved(colors []Color) bool {
	if len(colors) == 0 {
		return false
	}
	for _, c := range colors {
		if c != ColorCorrect {
			return false
		}
	}
	return true
}

// AwardPoints returns the points for a correct guess that was the player's
// attempt-th guess of the round.
func AwardPoints(attempt int, firstSolver bool) int {
	pts := pointsCorrect
	if attempt <= 2 {
		pts += bonusQuickSolve
	}
	if firstSolver {
		pts += bonusFirstSolver
	}
	return pts
}

// firstSolve reports whether no guess in log has solved the word yet.
func firstSolve(log []Guess) bool {
	for _, g := range log {
		if g.Solved() {
			return false
		}
	}
	return true
}
