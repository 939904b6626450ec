// internal/interview/evaluator/config.go
package evaluator

type Config struct {
	// RequireRelevance switches on the relevance pre-filter: an answer
	// judged off-topic is marked incorrect without a correctness call.
	RequireRelevance bool
}
