// Package envfile loads a local .env file into the process environment
// for the allow2-* CLI tools, so --key/--store-dir/--passphrase flags
// can be supplied via environment variables during local testing
// instead of the shell history.
package envfile

import "github.com/joho/godotenv"

// Load reads .env in the current directory if present. A missing file
// is not an error; any other read/parse failure is ignored since CLI
// flags remain the authoritative source of configuration.
func Load() {
	_ = godotenv.Load()
}
