package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"persona-agent/shared/logger"
	"persona-agent/shared/utils"
)

// Config holds the settings shared by the worker, the API and the CLI.
// Each binary checks only the sections it uses.
type Config struct {
	AppEnv         string `env:"APP_ENV" env-default:"development"`
	Logger         logger.Config
	Persona        PersonaConfig
	AI             AIConfig
	ImageJob       ImageJobConfig
	RabbitMQ       RabbitMQConfig
	Redis          RedisConfig
	Database       DatabaseConfig
	HTTP           HTTPConfig
	PushGatewayURL string        `env:"PUSHGATEWAY_URL"`                        // empty disables pushing
	TaskTimeout    time.Duration `env:"TASK_TIMEOUT" env-default:"2m"`          // upper bound for one worker task
	SecretsDir     string        `env:"SECRETS_DIR" env-default:"/run/secrets"`
}

// PersonaConfig locates the persona text. File wins over Prompt.
type PersonaConfig struct {
	Name   string `env:"PERSONA_NAME" env-default:"agent"`
	Prompt string `env:"PERSONA_PROMPT"`
	File   string `env:"PERSONA_FILE"`
}

// AIConfig selects and configures the completion backend.
type AIConfig struct {
	ClientType string        `env:"AI_CLIENT_TYPE" env-default:"openai"` // openai, openai-sdk, ollama, gemini
	BaseURL    string        `env:"AI_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model      string        `env:"AI_MODEL" env-default:"anthropic/claude-3-haiku"`
	APIKey     string        `env:"AI_API_KEY"`
	Timeout    time.Duration `env:"AI_TIMEOUT" env-default:"120s"` // HTTP client timeout
}

// ImageJobConfig configures image generation.
type ImageJobConfig struct {
	Endpoint   string `env:"IMAGE_JOB_ENDPOINT" env-default:"http://sequencer.heurist.xyz/submit_job"`
	APIKey     string `env:"HEURIS_API"`
	BasePrompt string `env:"IMAGE_PROMPT"`
	SavePath   string `env:"IMAGE_SAVE_PATH" env-default:"./images"`
}

// RabbitMQConfig configures the task and result queues.
type RabbitMQConfig struct {
	URL             string      `env:"RABBITMQ_URL"`
	ConsumerName    string      `env:"RABBITMQ_CONSUMER_NAME" env-default:"persona_agent_worker"`
	TaskQueue       QueueConfig `env-prefix:"RABBITMQ_TASK_QUEUE_"`
	ResultQueueName string      `env:"RABBITMQ_RESULT_QUEUE" env-default:"persona_generation_results"`
	PrefetchCount   int         `env:"RABBITMQ_PREFETCH_COUNT" env-default:"1"`
}

// QueueConfig holds the declaration flags of one queue.
type QueueConfig struct {
	Name       string `env:"NAME" env-default:"persona_generation_tasks"`
	Durable    bool   `env:"DURABLE" env-default:"true"`
	AutoDelete bool   `env:"AUTO_DELETE" env-default:"false"`
	Exclusive  bool   `env:"EXCLUSIVE" env-default:"false"`
	NoWait     bool   `env:"NO_WAIT" env-default:"false"`
}

// RedisConfig configures the seen-post store.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	SeenTTL  time.Duration `env:"REDIS_SEEN_TTL" env-default:"168h"`
}

// DatabaseConfig configures the result history database.
type DatabaseConfig struct {
	DSN      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DB_MAX_CONNS" env-default:"10"`
}

// HTTPConfig configures the API server. An empty AllowedOrigins disables
// CORS; "*" allows every origin.
type HTTPConfig struct {
	Port              string   `env:"HTTP_PORT" env-default:"8080"`
	AllowedOrigins    []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	JWTSecret         string   `env:"API_JWT_SECRET"`                              // signs inter-service tokens for /v1
	ProxyAllowedHosts []string `env:"IMAGE_PROXY_ALLOWED_HOSTS" env-separator:","` // hosts proxied besides issued image URLs
}

// Secret file names consulted when the matching variable is empty.
const (
	SecretAIAPIKey    = "ai_api_key"
	SecretImageAPIKey = "heuris_api_key"
	SecretDatabaseURL = "database_url"
	SecretRedisPasswd = "redis_password"
	SecretRabbitMQURL = "rabbitmq_url"
	SecretAPIJWT      = "api_jwt_secret"
)

// Load reads the optional .env file, the environment, and then Docker
// secrets for any credential left empty.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.fillSecrets(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for entrypoints that cannot start without configuration.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	return cfg
}

func (c *Config) fillSecrets() error {
	secrets := []struct {
		dst  *string
		name string
	}{
		{&c.AI.APIKey, SecretAIAPIKey},
		{&c.ImageJob.APIKey, SecretImageAPIKey},
		{&c.Database.DSN, SecretDatabaseURL},
		{&c.Redis.Password, SecretRedisPasswd},
		{&c.RabbitMQ.URL, SecretRabbitMQURL},
		{&c.HTTP.JWTSecret, SecretAPIJWT},
	}
	for _, s := range secrets {
		if err := utils.FillFromSecret(s.dst, c.SecretsDir, s.name); err != nil {
			return fmt.Errorf("secret %s: %w", s.name, err)
		}
	}
	return nil
}

// IsProduction reports whether AppEnv is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
