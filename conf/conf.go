// Package conf loads database connection settings from YAML.
//
// A configuration file names one or more connections:
//
//	connections:
//	  main:
//	    driver: sqlite
//	    database: ./var/app.db
//	    prefix: wp_
//	  events:
//	    driver: pgx
//	    host: db.internal:5433
//	    user: app
//	    password: ${EVENTS_DB_PASSWORD}
//	    database: events
//
// Environment variables overlay the file as ZSQL_<NAME>_<FIELD>: for example
// ZSQL_MAIN_PASSWORD sets the password of the "main" connection. Connection
// names with an underscore can't be addressed this way.
//
// ${VAR} in host, user, password, database, and dsn values expands from the
// environment when the configuration is loaded.
package conf

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"zgo.at/zsql"
)

// Connection is one named connection in a configuration file.
type Connection struct {
	Driver   string            `koanf:"driver"`
	Host     string            `koanf:"host"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Database string            `koanf:"database"`
	Params   map[string]string `koanf:"params"`
	DSN      string            `koanf:"dsn"`

	Prefix      string `koanf:"prefix"`
	PrefixMacro string `koanf:"prefix_macro"`
	StmtCache   int    `koanf:"stmt_cache"`
}

// Options converts this connection to zsql.ConnectOptions.
func (c Connection) Options() zsql.ConnectOptions {
	return zsql.ConnectOptions{
		Driver:      c.Driver,
		Host:        c.Host,
		User:        c.User,
		Password:    c.Password,
		Database:    c.Database,
		Params:      c.Params,
		DSN:         c.DSN,
		TablePrefix: c.Prefix,
		PrefixMacro: c.PrefixMacro,
		StmtCache:   c.StmtCache,
	}
}

// Load reads the connections from the configuration file at path, with the
// environment applied on top.
func Load(path string) (map[string]Connection, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("conf.Load: %w", err)
	}
	if err := k.Load(env.Provider("ZSQL_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("conf.Load: %w", err)
	}

	conns, err := unmarshal(k)
	if err != nil {
		return nil, fmt.Errorf("conf.Load: %w", err)
	}
	if len(conns) == 0 {
		return nil, fmt.Errorf("conf.Load: no connections in %q", path)
	}
	return conns, nil
}

// LoadMap is like Load but takes the configuration as a map; mostly useful
// for tests and for embedding in a larger configuration.
func LoadMap(m map[string]any) (map[string]Connection, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return nil, fmt.Errorf("conf.LoadMap: %w", err)
	}
	conns, err := unmarshal(k)
	if err != nil {
		return nil, fmt.Errorf("conf.LoadMap: %w", err)
	}
	return conns, nil
}

// Connect loads the configuration at path and connects the named connection.
//
// The driver still needs to be registered by importing the matching package
// under zgo.at/zsql/drivers.
func Connect(ctx context.Context, path, name string) (*zsql.DB, error) {
	conns, err := Load(path)
	if err != nil {
		return nil, err
	}
	c, ok := conns[name]
	if !ok {
		return nil, fmt.Errorf("conf.Connect: no connection %q in %q (have: %s)",
			name, path, strings.Join(names(conns), ", "))
	}
	db, err := zsql.Connect(ctx, c.Options())
	if err != nil {
		return nil, fmt.Errorf("conf.Connect %q: %w", name, err)
	}
	return db, nil
}

// envKey maps ZSQL_MAIN_STMT_CACHE to connections.main.stmt_cache. Only the
// first underscore separates the connection name from the field.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "ZSQL_"))
	name, field, ok := strings.Cut(s, "_")
	if !ok {
		return ""
	}
	return "connections." + name + "." + field
}

func unmarshal(k *koanf.Koanf) (map[string]Connection, error) {
	var cfg struct {
		Connections map[string]Connection `koanf:"connections"`
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	for n, c := range cfg.Connections {
		cfg.Connections[n] = expand(c)
	}
	return cfg.Connections, nil
}

var envRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} with the environment variable's value, leaving
// the text as-is when the variable is unset or empty.
func expandEnv(s string) string {
	return envRe.ReplaceAllStringFunc(s, func(m string) string {
		if v := os.Getenv(m[2 : len(m)-1]); v != "" {
			return v
		}
		return m
	})
}

func expand(c Connection) Connection {
	c.Host = expandEnv(c.Host)
	c.User = expandEnv(c.User)
	c.Password = expandEnv(c.Password)
	c.Database = expandEnv(c.Database)
	c.DSN = expandEnv(c.DSN)
	return c
}

func names(conns map[string]Connection) []string {
	l := make([]string, 0, len(conns))
	for n := range conns {
		l = append(l, n)
	}
	sort.Strings(l)
	return l
}
