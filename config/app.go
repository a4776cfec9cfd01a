package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	Gateway Gateway
	Redis   Redis
	Kafka   Kafka
	Sweep   Sweep
}

type Gateway struct {
	BaseURL      string `env:"GATEWAY_BASE_URL"`
	UserToken    string `env:"GATEWAY_USER_TOKEN,required"`
	RedirectURL  string `env:"GATEWAY_REDIRECT_URL"`
	WebhookToken string `env:"WEBHOOK_TOKEN"`
}

type Redis struct {
	Addr string `env:"REDIS_ADDR"`
}

type Kafka struct {
	Brokers      []string `env:"KAFKA_BROKERS"`
	SettledTopic string   `env:"SETTLED_TOPIC" default:"bill.settled"`
}

type Sweep struct {
	Schedule string        `env:"SWEEP_SCHEDULE" default:"*/2 * * * *"`
	MaxAge   time.Duration `env:"SWEEP_MAX_AGE" default:"30m"`
}
