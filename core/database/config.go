package database

// DBType selects the SQL dialect used to interpret ConnectionString.
type DBType string

const (
	Postgres DBType = "Postgres"
	MySql    DBType = "MySql"
	MariaDB  DBType = "MariaDB"
)

// Config holds configuration for the database connection. Missing
// dbConfig entirely is a fatal startup error handled by the config
// loader, not here; this struct only validates the fields it owns.
type Config struct {
	// DBType selects the store dialect: Postgres, MySql, or MariaDB.
	DBType DBType `mapstructure:"dbType" default:"MySql"`
	// ConnectionString is the dialect-specific connection URI.
	ConnectionString string `mapstructure:"connectionString"`
	// TimeoutSeconds bounds connection setup and the initial ping.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" default:"30"`
}

// Valid reports whether DBType is one of the three supported dialects and
// ConnectionString is set.
func (c Config) Valid() bool {
	switch c.DBType {
	case Postgres, MySql, MariaDB:
		return c.ConnectionString != ""
	default:
		return false
	}
}
