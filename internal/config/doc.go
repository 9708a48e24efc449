// Package config loads engine configuration with viper and validates it.
package config
