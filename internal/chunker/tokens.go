package chunker

// TokenCounter estimates the token count of a text.
type TokenCounter interface {
	Count(text string) int
}

// estimator approximates tokens as one per four characters. Close enough
// to the real tokenizers for chunk sizing, and it needs no model files.
type estimator struct{}

// NewEstimator returns the default character-based token counter.
func NewEstimator() TokenCounter {
	return estimator{}
}

func (estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
