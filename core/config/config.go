package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrInvalidConfigType indicates the argument was not a non-nil pointer
	// to a struct.
	ErrInvalidConfigType = errors.New("config target must be a non-nil struct pointer")

	// ErrParseConfig indicates the environment could not be parsed into the
	// target struct, typically a missing required variable or a type
	// mismatch.
	ErrParseConfig = errors.New("failed to parse config from environment")
)

var (
	cache      sync.Map // reflect.Type -> struct value
	dotenvOnce sync.Once
)

// Load populates cfg from the environment. The first call for a given struct
// type parses the environment; subsequent calls for the same type return the
// cached value, so every consumer of a config type sees identical values.
// A .env file in the working directory is loaded once, before the first
// parse, and never overrides variables already set.
func Load(cfg any) error {
	dotenvOnce.Do(func() {
		// Absence of a .env file is the normal production case.
		_ = godotenv.Load()
	})

	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfigType
	}

	key := v.Elem().Type()
	if cached, ok := cache.Load(key); ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseConfig, err)
	}

	// LoadOrStore keeps the first successful parse authoritative under
	// concurrent first loads.
	actual, _ := cache.LoadOrStore(key, v.Elem().Interface())
	v.Elem().Set(reflect.ValueOf(actual))
	return nil
}

// MustLoad is Load that panics on failure. Intended for application startup
// where a broken environment should stop the process.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
