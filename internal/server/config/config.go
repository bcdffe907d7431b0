// Package config handles configuration for the server,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the factory backend.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the flat-file store.
//   - DataDir: directory holding the flat-file collections.
//   - AdminCode: the fixed administrator login code. Override in prod.
//   - AdminName: display name of the synthesized admin identity.
//   - CodeSalt: application-wide suffix mixed into every code digest.
//     Changing it invalidates every stored worker code.
//   - AllowedOrigins: CORS origins permitted to call the API with credentials.
type Config struct {
	EndpointAddr   string
	DatabaseDSN    string
	DataDir        string
	AdminCode      string
	AdminName      string
	CodeSalt       string
	AllowedOrigins []string
}

// LoadDefaults populates Config with the historical development defaults.
// NOTE: AdminCode and CodeSalt must be overridden for any real deployment.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":5000"
	c.DatabaseDSN = ""
	c.DataDir = "data"
	c.AdminCode = "LEMROUDJ2024"
	c.AdminName = "LEMROUDJ Admin"
	c.CodeSalt = "factory_salt_2024"
	c.AllowedOrigins = []string{"http://localhost:5000"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
