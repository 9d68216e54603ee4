package opsserver

// Config holds configuration for the operational HTTP surface.
type Config struct {
	// Port is the port the ops server listens on.
	Port string `mapstructure:"port" default:"8080"`
}
