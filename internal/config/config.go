// Package config handles configuration loading for bank API clients.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so certificate paths and
// identifiers can be injected at runtime. It is loaded once at startup
// and treated as immutable afterwards.
//
// # Example Configuration
//
//	baseURL: https://connect.example-bank.com
//	clientID: ${BANK_CLIENT_ID}
//	logLevel: info
//	localInterface: ""
//
//	tls:
//	  certFile: /etc/bank/client.crt
//	  keyFile: /etc/bank/client.key
//	  caFile: /etc/bank/root.pem
//
//	timeouts:
//	  balance: 30s
//	  statement: 60s
//	  paymentAck: 10s
//	  confirm: 5s
//	  pollInterval: 1s
//
// See [Load] for loading configuration from a file.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kempu/go-lhvconnect/pkg/bank"
	"github.com/kempu/go-lhvconnect/pkg/transport"
)

// Config is the root configuration structure.
type Config struct {
	BaseURL  string `yaml:"baseURL"`
	ClientID string `yaml:"clientID"`
	LogLevel string `yaml:"logLevel"`
	// LocalInterface optionally binds outbound connections to a local
	// interface address.
	LocalInterface string         `yaml:"localInterface"`
	TLS            TLSConfig      `yaml:"tls"`
	Timeouts       TimeoutsConfig `yaml:"timeouts"`
}

// TLSConfig holds the mutual-TLS material issued by the bank.
type TLSConfig struct {
	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
	CAFile   string `yaml:"caFile"`
}

// TimeoutsConfig holds optional per-operation timeout overrides.
type TimeoutsConfig struct {
	Balance      Duration `yaml:"balance"`
	Statement    Duration `yaml:"statement"`
	PaymentAck   Duration `yaml:"paymentAck"`
	Confirm      Duration `yaml:"confirm"`
	PollInterval Duration `yaml:"pollInterval"`
}

// Duration parses YAML scalars like "30s" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads and validates the configuration file, expanding environment
// variables before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("baseURL is required")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls.certFile and tls.keyFile must be set together")
	}
	return nil
}

// TransportConfig builds the transport configuration, loading the client
// certificate and trusted root from disk.
func (c *Config) TransportConfig() (*transport.Config, error) {
	tcfg := transport.DefaultConfig(c.BaseURL)
	tcfg.ClientID = c.ClientID
	tcfg.LocalAddr = c.LocalInterface

	if c.TLS.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.TLS.CertFile, c.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tcfg.Certificates = []tls.Certificate{cert}
	}

	if c.TLS.CAFile != "" {
		pem, err := os.ReadFile(c.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read trusted root: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", c.TLS.CAFile)
		}
		tcfg.RootCAs = pool
	}

	return tcfg, nil
}

// BankConfig builds the per-operation timeout configuration, applying
// defaults for unset values.
func (c *Config) BankConfig() *bank.Config {
	cfg := bank.DefaultConfig()
	if c.Timeouts.Balance != 0 {
		cfg.BalanceTimeout = time.Duration(c.Timeouts.Balance)
	}
	if c.Timeouts.Statement != 0 {
		cfg.StatementTimeout = time.Duration(c.Timeouts.Statement)
	}
	if c.Timeouts.PaymentAck != 0 {
		cfg.PaymentAckTimeout = time.Duration(c.Timeouts.PaymentAck)
	}
	if c.Timeouts.Confirm != 0 {
		cfg.ConfirmTimeout = time.Duration(c.Timeouts.Confirm)
	}
	if c.Timeouts.PollInterval != 0 {
		cfg.PollInterval = time.Duration(c.Timeouts.PollInterval)
	}
	return cfg
}

// Logger builds a production zap logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level := c.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapcfg := zap.NewProductionConfig()
	zapcfg.Level = lvl
	return zapcfg.Build()
}
