// Package config provides configuration management for the ban
// aggregation engine.
//
// It utilizes Viper for loading configuration from environment variables,
// a .env file, and command-line flags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application
// settings, divided into subsections:
//   - DBConfig: store connection details
//   - Server: the ops HTTP surface (health and status)
//   - Archive: optional raw-payload archival on parse failure
//   - Log: logging level and format
//   - Sources: one entry per configured upstream, keyed by source name
//
// # Usage
//
//	cfg, err := config.LoadConfig(".", flags)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
//
// Every leaf key is also reachable as a `--path.to.key=value` flag; see
// FlagKeys.
package config
