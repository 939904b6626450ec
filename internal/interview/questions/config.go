// internal/interview/questions/config.go
package questions

type Config struct {
	// QuestionCount is how many questions the prompt asks for.
	QuestionCount int
	// MinValid is the minimum number of well-formed entries required for
	// the set to be usable.
	MinValid int
}

func DefaultConfig() *Config {
	return &Config{
		QuestionCount: 4,
		MinValid:      3,
	}
}
