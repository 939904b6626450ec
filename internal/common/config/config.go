// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig          `mapstructure:"app"`
	Server    ServerConfig       `mapstructure:"server"`
	GenAI     GenAIConfig        `mapstructure:"genai"`
	Interview InterviewConfig    `mapstructure:"interview"`
	Database  DatabaseConfig     `mapstructure:"database"`
	Storage   StorageConfig      `mapstructure:"storage"`
	Email     EmailConfig        `mapstructure:"email"`
	Logging   LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// GenAIConfig holds settings for the generation backend.
type GenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// InterviewConfig holds the workflow knobs.
type InterviewConfig struct {
	QuestionCount      int  `mapstructure:"question_count"`
	MinValidQuestions  int  `mapstructure:"min_valid_questions"`
	RequireRelevance   bool `mapstructure:"require_relevance"`
	RequireRoleProfile bool `mapstructure:"require_role_profile"`
	SessionTTL         int  `mapstructure:"session_ttl"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Enabled        bool   `mapstructure:"enabled"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds settings for the append-only result sinks.
type StorageConfig struct {
	CSVDir           string `mapstructure:"csv_dir"`
	ResponsesFile    string `mapstructure:"responses_file"`
	ReportsFile      string `mapstructure:"reports_file"`
	RetentionDays    int    `mapstructure:"retention_days"`
	RetentionEnabled bool   `mapstructure:"retention_enabled"`
}

// EmailConfig holds settings for report delivery over SES.
type EmailConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Region         string `mapstructure:"region"`
	FromEmail      string `mapstructure:"from_email"`
	RecruiterEmail string `mapstructure:"recruiter_email"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
