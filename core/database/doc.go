// Package database handles the store's connection setup.
//
// It provides a thin wrapper around GORM to configure a MySQL, MariaDB,
// or Postgres connection from the application's configuration.
//
// # Connect
//
// Connect establishes the connection and verifies it with an initial
// ping bounded by the configured timeout.
//
// # Usage
//
//	db, err := database.Connect(cfg.DBConfig)
//	if err != nil {
//	    log.Fatal("database connection failed", err)
//	}
package database
