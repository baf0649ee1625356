// Package config loads client settings from YAML with DB_* environment
// fallbacks for the database connection.
package config

import (
	"bytes"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/krew-solutions/evita-client-go/evita/query/printer"
	"github.com/krew-solutions/evita-client-go/evita/querylog"
)

type Config struct {
	// Catalog names the evita catalog queries are issued against.
	Catalog  string   `yaml:"catalog"`
	Render   Render   `yaml:"render"`
	QueryLog QueryLog `yaml:"querylog"`
	Database Database `yaml:"database"`
}

// Render configures how applications display queries through PrinterOptions.
// Recorded shapes always use the single-line parameterized form.
type Render struct {
	// Indent spreads rendered queries over lines; empty renders a single line.
	Indent            string `yaml:"indent,omitempty"`
	ExtractParameters bool   `yaml:"extractParameters"`
	QuotedStrings     bool   `yaml:"quotedStrings"`
}

type QueryLog struct {
	// Table defaults to <catalog>_query_log.
	Table     string `yaml:"table,omitempty"`
	CacheSize int    `yaml:"cacheSize"`
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func Default() *Config {
	return &Config{
		Catalog: "evita",
		Render: Render{
			ExtractParameters: true,
		},
		QueryLog: QueryLog{
			CacheSize: querylog.DefaultCacheSize,
		},
		Database: Database{
			Host: "localhost",
			Port: 5432,
			User: "devel",
			Name: "devel_evita",
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Environment variables override the database section either way.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read config")
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "invalid config %s", path)
		}
	}
	if err := cfg.Database.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Catalog == "" && c.QueryLog.Table == "" {
		return errors.New("config: catalog or querylog.table must be set")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("config: invalid database port %d", c.Database.Port)
	}
	return nil
}

func (c *Config) QueryLogTable() string {
	if c.QueryLog.Table != "" {
		return c.QueryLog.Table
	}
	return c.Catalog + "_query_log"
}

func (d *Database) applyEnv() error {
	envString("DB_HOST", &d.Host)
	envString("DB_USERNAME", &d.User)
	envString("DB_PASSWORD", &d.Password)
	envString("DB_DATABASE", &d.Name)
	if value, ok := os.LookupEnv("DB_PORT"); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid DB_PORT %q", value)
		}
		d.Port = port
	}
	return nil
}

func envString(key string, target *string) {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
}

// ConnString returns a postgres URL for the database section.
func (d Database) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else if d.User != "" {
		u.User = url.User(d.User)
	}
	return u.String()
}

func (r Render) PrinterOptions() []printer.Option {
	var opts []printer.Option
	if r.Indent != "" {
		opts = append(opts, printer.WithIndent(r.Indent))
	}
	if r.ExtractParameters {
		opts = append(opts, printer.ExtractParameters())
	}
	if r.QuotedStrings {
		opts = append(opts, printer.QuotedStrings())
	}
	return opts
}
