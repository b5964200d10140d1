// Package config loads the service configuration.
//
// Values come from three sources, in increasing order of precedence:
//
//	1. struct tag defaults
//	2. an optional YAML file (config.yaml, configs/config.yaml or the file
//	   named by UGB_CONFIG_FILE)
//	3. environment variables prefixed with UGB_
//
// Environment variables follow the nesting of the Config struct:
//
//	UGB_SERVER_PORT=8080
//	UGB_STORAGE_BACKEND=sheets
//	UGB_SHEETS_SPREADSHEET_ID=1AbC...
//	UGB_SESSION_BACKEND=redis
//	UGB_STORAGE_REPLACE_ON_UPLOAD=false
//
// The loaded struct is checked with go-playground/validator before use.
package config
