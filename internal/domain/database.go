package domain

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// DatabaseConnection holds the metadata for connecting to an external
// database that backs a collection. The password is resolved separately
// from the SecretStore under PasswordKey.
type DatabaseConnection struct {
	Driver      DatabaseDriver    `json:"driver" yaml:"driver"`
	Host        string            `json:"host" yaml:"host"` // hostname, mongo URI or file path (sqlite)
	Port        int               `json:"port" yaml:"port"` // 0 uses the driver default
	Database    string            `json:"database" yaml:"database"`
	Username    string            `json:"username" yaml:"username"`
	PasswordKey string            `json:"passwordKey" yaml:"password_key"`
	SSLMode     string            `json:"sslMode" yaml:"ssl_mode"`
	Options     map[string]string `json:"options,omitempty" yaml:"options"` // authSource, replicaSet, ...
}
