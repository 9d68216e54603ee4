package objectstore

// Config holds configuration for the optional raw-payload archiver.
// Archival is off unless Enabled is set; adapters must tolerate a nil
// client and skip archiving rather than fail a job over it.
type Config struct {
	// Enabled turns on archival of raw upstream payloads on parse failure.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the object storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"accessKey" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secretKey" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"useSSL" default:"false"`
	// Bucket is the bucket archived payloads are written into.
	Bucket string `mapstructure:"bucket" default:"bansync-archive"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" default:"30"`
}
