package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppConfig_Environment(t *testing.T) {
	dev := AppConfig{Environment: "development"}
	assert.True(t, dev.IsDevelopment())
	assert.False(t, dev.IsProduction())

	prod := AppConfig{Environment: "production"}
	assert.False(t, prod.IsDevelopment())
	assert.True(t, prod.IsProduction())
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Host: "localhost", Name: "taskpilot"},
			JWT:      JWTConfig{Secret: "a-real-secret"},
			Server:   ServerConfig{Port: 1814},
			OTP:      OTPConfig{TTL: 10 * time.Minute},
			Reminder: ReminderConfig{Interval: time.Minute},
		}
	}

	assert.NoError(t, validateConfig(valid()))

	cfg := valid()
	cfg.JWT.Secret = "change-me"
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Database.Host = ""
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Server.Port = 0
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.OTP.TTL = 0
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Reminder.Interval = 0
	assert.Error(t, validateConfig(cfg))
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "taskpilot",
		Password: "secret",
		Name:     "taskpilot",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=taskpilot password=secret dbname=taskpilot sslmode=require",
		cfg.GetDSN())
}
