package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN("app", "s3cret", "db.internal", 3307, "reports")
	assert.Equal(t, "app:s3cret@tcp(db.internal:3307)/reports?parseTime=true", dsn)
}

func TestBuildDSNDefaultPort(t *testing.T) {
	dsn := BuildDSN("app", "s3cret", "localhost", 0, "reports")
	assert.Equal(t, "app:s3cret@tcp(localhost:3306)/reports?parseTime=true", dsn)
}
