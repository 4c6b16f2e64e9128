// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// CertFile is the PEM certificate served by the HTTPS listener.
	CertFile string `json:"tls_cert"`

	// KeyFile is the PEM private key matching CertFile.
	KeyFile string `json:"tls_key"`

	// StaticDir is served at "/" when it exists. Empty disables static files.
	StaticDir string `json:"static_dir"`

	// LogLevel is the minimum zap level.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses os.Args, the config file and environment variables.
// It exits the process on malformed input.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// ParseArgs builds Options from args. Precedence, lowest first: flag
// defaults and values, the JSON config file, environment variables.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("securetalk", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", ":443", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "postgres://localhost:5432/securetalk?sslmode=disable", "db address")
	fs.StringVar(&options.CertFile, "cert", "localhost+2.pem", "TLS certificate (PEM)")
	fs.StringVar(&options.KeyFile, "key", "localhost+2-key.pem", "TLS private key (PEM)")
	fs.StringVar(&options.StaticDir, "static", "public", "directory served at /")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	for env, dst := range map[string]*string{
		"SERVER_ADDRESS": &options.Port,
		"DATABASE_DSN":   &options.DatabaseDSN,
		"TLS_CERT":       &options.CertFile,
		"TLS_KEY":        &options.KeyFile,
		"STATIC_DIR":     &options.StaticDir,
		"LOG_LEVEL":      &options.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	return options, nil
}
