package mysql

import "fmt"

const defaultPort = 3306

// BuildDSN constructs a go-sql-driver DSN from discrete parts. parseTime
// is always enabled so DATETIME columns scan into time.Time.
func BuildDSN(user, password, host string, port int, dbName string) string {
	if port == 0 {
		port = defaultPort
	}
	// format: user:pass@tcp(host:port)/dbname?parseTime=true
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		user, password, host, port, dbName,
	)
}
