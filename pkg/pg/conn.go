package pg

import "database/sql"

// Config holds the connection settings for one postgres endpoint. The api
// carries two of these, one for reads and one for writes.
type Config struct {
	User     string `env:"USER"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	Password string `env:"PASSWORD"`
	Database string `env:"DBNAME"`
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" port=" + c.Port +
		" sslmode=disable"
}

// newSqlConnection opens a raw database/sql handle, used by the goose
// migration runner.
func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.DSN())
}
