package session

import "time"

type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"__cg_sid"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

func DefaultConfig() Config {
	return Config{CookieName: "__cg_sid", TTL: 2 * time.Hour}
}
