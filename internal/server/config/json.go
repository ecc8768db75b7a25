package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/flagx"
	"github.com/bucketlist-social/bucketlist/internal/timex"
)

// JsonConfig is the configuration shape as read from a JSON file. It uses
// timex.Duration for interval fields, which parses both string values
// such as "15m" and integer nanoseconds. After unmarshalling, its fields
// are copied into the runtime Config.
type JsonConfig struct {
	Addr        string         `json:"addr"`
	DatabaseDSN string         `json:"database_dsn"`
	SecretKey   string         `json:"secret_key"`
	TokenTTL    timex.Duration `json:"token_ttl"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. Unreadable or invalid files
// panic, keeping a misconfigured server from starting.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenTTL = time.Duration(c.TokenTTL.Duration)
}
