package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Automation AutomationConfig `mapstructure:"automation" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// WebhookConfig contains the inbound webhook authentication settings.
// An empty secret is a valid configuration: every webhook call is then
// rejected with 403 until a secret is provisioned.
type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

// AutomationConfig controls workflow evaluation behavior.
type AutomationConfig struct {
	// FiringMode selects level- or edge-triggered score_achieved firing.
	// Level mode re-fires on every qualifying evaluation and is the default.
	FiringMode string `mapstructure:"firing_mode" validate:"required,oneof=level edge"`

	// Async hands workflow actions off to the bounded task dispatcher
	// instead of executing them inline on the request path.
	Async bool `mapstructure:"async"`
}

// TaskConfig contains the bounded action dispatcher settings, used only
// when Automation.Async is enabled.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
}
