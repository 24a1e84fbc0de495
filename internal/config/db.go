package config

import (
	"fmt"
	"os"
)

// defaultDSN matches the docker-compose MySQL service for local runs.
const defaultDSN = "inmet:inmet@tcp(localhost:3306)/inmet_weather?parseTime=true"

// GetDatabaseDSN resolves the MySQL DSN for observation storage. An explicit
// INMET_DATABASE_DSN wins. Otherwise the DSN is assembled from INMET_DB_USER
// and INMET_DB_PASSWORD, with INMET_DB_HOST, INMET_DB_PORT and INMET_DB_NAME
// defaulting to the local development database. Without credentials the
// default DSN is used as-is.
func GetDatabaseDSN() string {
	if dsn := os.Getenv("INMET_DATABASE_DSN"); dsn != "" {
		return dsn
	}

	user := os.Getenv("INMET_DB_USER")
	password := os.Getenv("INMET_DB_PASSWORD")
	if user == "" || password == "" {
		return defaultDSN
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		user, password,
		envOr("INMET_DB_HOST", "localhost"),
		envOr("INMET_DB_PORT", "3306"),
		envOr("INMET_DB_NAME", "inmet_weather"))
}
