package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"enatega_storefront/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "app",
		DBPassword: "pw",
		DBName:     "storefront",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "host=db user=app password=pw dbname=storefront port=5432 sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = ""
	assert.Contains(t, DSN(cfg), "sslmode=require")
}
