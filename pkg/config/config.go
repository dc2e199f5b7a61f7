package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("nil pointer passed to config loader")
	ErrParsingConfig = errors.New("failed to parse environment into config")
)

var (
	mu     sync.Mutex
	cache  = make(map[string]any)
	dotenv sync.Once
)

// Load parses environment variables into the struct pointed to by v,
// caching the result per struct type so every caller of the same Config
// sees one consistent snapshot. A .env file in the working directory is
// loaded once before the first parse; its absence is not an error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenv.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*v).String()

	mu.Lock()
	defer mu.Unlock()
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad is Load for configs the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// LoadEnv loads additional .env files before any config is parsed. Later
// files override earlier ones. Intended for tests and local tooling.
func LoadEnv(paths ...string) error {
	return godotenv.Overload(paths...)
}

// Reset drops the cached snapshots. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cache = make(map[string]any)
}
