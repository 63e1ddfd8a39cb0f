package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// envVars holds defaults read from PHFGEN_* variables. Flags override them.
type envVars struct {
	Environment string `split_words:"true"`

	Grammar     string  `default:"go"`
	Hash        string  // empty selects the grammar's default
	Lambda      int     `default:"5"`
	LoadFactor  float64 `split_words:"true" default:"1"`
	MaxAttempts int     `split_words:"true"`
	Workers     int     `default:"1"`
}

// loadEnv reads an optional .env file and the PHFGEN_* environment.
func loadEnv() (envVars, error) {
	var env envVars

	// A missing .env file is fine; the environment alone is enough.
	_ = godotenv.Load()

	if err := envconfig.Process("PHFGEN", &env); err != nil {
		return env, fmt.Errorf("process environment: %w", err)
	}

	switch env.Environment {
	case "":
		env.Environment = EnvDev
	case EnvDev, EnvProd:
	default:
		return env, fmt.Errorf("invalid environment %q", env.Environment)
	}
	return env, nil
}
