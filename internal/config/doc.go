// Package config loads, normalizes, and validates dubber configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// environment fallbacks such as GOOGLE_API_KEY and ELEVENLABS_API_KEY. The
// Config struct is passed explicitly to the pipeline; nothing here is global.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
