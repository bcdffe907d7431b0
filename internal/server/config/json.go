package config

import (
	"encoding/json"
	"os"

	"github.com/lemroudj/factory-backend/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr   string   `json:"endpoint_addr"`
	DatabaseDSN    string   `json:"database_dsn"`
	DataDir        string   `json:"data_dir"`
	AdminCode      string   `json:"admin_code"`
	AdminName      string   `json:"admin_name"`
	CodeSalt       string   `json:"code_salt"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, if any. Empty fields in the file leave the current
// values untouched. A missing flag means no JSON file is loaded; an
// unreadable or invalid file panics, since running with half-applied
// configuration is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
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

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.AdminCode != "" {
		config.AdminCode = c.AdminCode
	}
	if c.AdminName != "" {
		config.AdminName = c.AdminName
	}
	if c.CodeSalt != "" {
		config.CodeSalt = c.CodeSalt
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}
