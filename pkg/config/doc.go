// Package config loads environment variables (and an optional .env file) into
// typed configuration structs using caarlos0/env struct tags.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// The .env file in the working directory is read once per process; variables
// already present in the environment take precedence over it.
package config
