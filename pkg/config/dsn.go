package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const defaultPostgresPort = 5432

// applyURL overwrites the connection fields of c with the components of
// c.URL. Query parameters other than sslmode are kept in Options.
// Accepts postgres:// and postgresql:// URLs.
func (c *DatabaseConfig) applyURL() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is empty")
	}

	u, err := url.Parse(strings.Replace(c.URL, "postgresql://", "postgres://", 1))
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" {
		return fmt.Errorf("invalid database URL scheme: %s (expected postgres or postgresql)", u.Scheme)
	}

	port := defaultPostgresPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return fmt.Errorf("invalid port in database URL: %w", err)
		}
	}

	c.Host = u.Hostname()
	c.Port = port
	c.User, c.Password = "", ""
	if u.User != nil {
		c.User = u.User.Username()
		c.Password, _ = u.User.Password()
	}
	c.Database = strings.TrimPrefix(u.Path, "/")

	c.SSLMode = "disable"
	c.Options = map[string]string{}
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "sslmode" {
			c.SSLMode = values[0]
			continue
		}
		c.Options[key] = values[0]
	}
	return nil
}

// DSN returns the libpq key=value connection string. A parseable URL
// takes precedence over the individual fields.
func (c *DatabaseConfig) DSN() string {
	src := c
	if c.URL != "" {
		cp := *c
		if err := cp.applyURL(); err == nil {
			src = &cp
		}
	}

	parts := []string{
		"host=" + quoteDSN(src.Host),
		"port=" + strconv.Itoa(src.Port),
		"user=" + quoteDSN(src.User),
		"password=" + quoteDSN(src.Password),
		"dbname=" + quoteDSN(src.Database),
		"sslmode=" + quoteDSN(src.SSLMode),
	}

	keys := make([]string, 0, len(src.Options))
	for k := range src.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+quoteDSN(src.Options[k]))
	}

	return strings.Join(parts, " ")
}

// quoteDSN single-quotes values libpq would otherwise split or misread.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
