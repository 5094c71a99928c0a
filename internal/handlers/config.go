package handlers

import "github.com/danielgtaylor/huma/v2"

// NewAPIConfig returns the huma config for the shortener API.
// Response bodies carry no $schema link so they match the documented shapes exactly.
func NewAPIConfig(title, version string) huma.Config {
	config := huma.DefaultConfig(title, version)
	config.Transformers = nil
	config.OnAddOperation = nil

	return config
}
