package config

import (
	"flag"
	"os"
	"strings"

	"github.com/lemroudj/factory-backend/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN (empty selects the flat-file store)
//	-f string   data directory for the flat-file store
//	-k string   administrator login code
//	-n string   administrator display name
//	-s string   code digest salt
//	-o string   comma-separated CORS origins
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-f", "-k", "-n", "-s", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DataDir, "f", config.DataDir, "data directory for flat-file storage")
	fs.StringVar(&config.AdminCode, "k", config.AdminCode, "administrator login code")
	fs.StringVar(&config.AdminName, "n", config.AdminName, "administrator display name")
	fs.StringVar(&config.CodeSalt, "s", config.CodeSalt, "code digest salt")

	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "comma-separated CORS origins")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *origins != "" {
		config.AllowedOrigins = strings.Split(*origins, ",")
	}
}
