// Package config loads environment-backed configuration structs through
// caarlos0/env, with a per-type cache and automatic .env loading via
// godotenv. Every package that carries a Config struct (totp, postgres,
// redis, mongo) parses it through Load so the whole process shares one
// snapshot per type.
//
//	var cfg postgres.Config
//	config.MustLoad(&cfg)
package config
