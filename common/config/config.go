package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int           `yaml:"max_conns"`
	MaxIdle         int           `yaml:"max_idle"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig MQTT broker settings
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// GetDSN returns the lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LoadFromEnv overrides fields from <prefix>_HOST, _PORT, _USER, _PASSWORD,
// _NAME, _SSLMODE and _MAX_CONNS
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	overrideString(&c.Host, prefix+"_HOST")
	overrideInt(&c.Port, prefix+"_PORT")
	overrideString(&c.User, prefix+"_USER")
	overrideString(&c.Password, prefix+"_PASSWORD")
	overrideString(&c.Database, prefix+"_NAME")
	overrideString(&c.SSLMode, prefix+"_SSLMODE")
	overrideInt(&c.MaxConns, prefix+"_MAX_CONNS")
}

// LoadFromEnv overrides fields from <prefix>_ADDR, _PASSWORD and _DB
func (c *RedisConfig) LoadFromEnv(prefix string) {
	overrideString(&c.Addr, prefix+"_ADDR")
	overrideString(&c.Password, prefix+"_PASSWORD")
	overrideInt(&c.DB, prefix+"_DB")
}

// LoadFromEnv overrides fields from <prefix>_BROKER, _CLIENT_ID, _USERNAME
// and _PASSWORD
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	overrideString(&c.Broker, prefix+"_BROKER")
	overrideString(&c.ClientID, prefix+"_CLIENT_ID")
	overrideString(&c.Username, prefix+"_USERNAME")
	overrideString(&c.Password, prefix+"_PASSWORD")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// overrideInt ignores values that do not parse
func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}
