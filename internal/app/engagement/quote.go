package engagement

// Quotes is the motivational quote pool shown on the dashboard.
var Quotes = []string{
	"Quality is not an act, it is a habit.",
	"Your habits will determine your future.",
	"Motivation is what gets you started. Habit is what keeps you going.",
	"Small daily improvements over time lead to stunning results.",
	"Success is the sum of small efforts, repeated day in and day out.",
}

// PickQuote selects a quote using intn, which must return a value in [0, n).
func PickQuote(intn func(n int) int) string {
	return Quotes[intn(len(Quotes))]
}
