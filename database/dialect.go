// Package database knows how to reach each supported database: which
// database/sql driver to use, how to build its DSN, and the SQL details
// (placeholders, identifier quoting, row limits) that differ between them.
package database

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config holds the connection parameters collected from the user.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Name     string // Database name, or the file path for sqlite
	User     string
	Password string
	SSLMode  string // postgres only
}

// Dialect describes one supported database.
type Dialect struct {
	Name        string
	DriverName  string // database/sql driver name
	DefaultPort int
	MaxParams   int // Bind parameters allowed in one statement
	MaxRows     int // Row value expressions allowed in one INSERT, zero for no limit

	placeholder func(n int) string
	quote       [2]string
	dsn         func(Config) (string, error)
	limit       func(query string, n int) string
}

// Placeholder renders the bind marker for the n-th (1-based) parameter.
func (d *Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Quote wraps an identifier in the dialect's quote characters, doubling any
// embedded closing quote.
func (d *Dialect) Quote(ident string) string {
	return d.quote[0] + strings.ReplaceAll(ident, d.quote[1], d.quote[1]+d.quote[1]) + d.quote[1]
}

// DSN builds the driver connection string for cfg.
func (d *Dialect) DSN(cfg Config) (string, error) {
	if cfg.Port == 0 {
		cfg.Port = d.DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	return d.dsn(cfg)
}

// Limit appends a clause returning at most n rows to an ordered query.
func (d *Dialect) Limit(query string, n int) string {
	return d.limit(query, n)
}

var dialects = map[string]*Dialect{
	"mysql":     mysqlDialect("mysql"),
	"mariadb":   mysqlDialect("mariadb"),
	"postgres":  postgresDialect(),
	"sqlserver": sqlserverDialect(),
	"sqlite":    sqliteDialect(),
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (*Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown database driver %q (want one of %s)", name, strings.Join(Dialects(), ", "))
	}
	return d, nil
}

// Dialects returns the sorted names of the supported databases.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func questionMark(int) string { return "?" }

func limitClause(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func hostPort(cfg Config) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func mysqlDialect(name string) *Dialect {
	return &Dialect{
		Name:        name,
		DriverName:  "mysql",
		DefaultPort: 3306,
		MaxParams:   65535,
		placeholder: questionMark,
		quote:       [2]string{"`", "`"},
		limit:       limitClause,
		dsn: func(cfg Config) (string, error) {
			c := mysql.NewConfig()
			c.User = cfg.User
			c.Passwd = cfg.Password
			c.Net = "tcp"
			c.Addr = hostPort(cfg)
			c.DBName = cfg.Name
			c.Loc = time.UTC
			return c.FormatDSN(), nil
		},
	}
}

func postgresDialect() *Dialect {
	return &Dialect{
		Name:        "postgres",
		DriverName:  "postgres",
		DefaultPort: 5432,
		MaxParams:   65535,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		quote:       [2]string{`"`, `"`},
		limit:       limitClause,
		dsn: func(cfg Config) (string, error) {
			u := url.URL{
				Scheme: "postgres",
				Host:   hostPort(cfg),
				Path:   "/" + cfg.Name,
			}
			if cfg.User != "" {
				u.User = url.UserPassword(cfg.User, cfg.Password)
			}
			sslmode := cfg.SSLMode
			if sslmode == "" {
				sslmode = "disable"
			}
			u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
			return u.String(), nil
		},
	}
}

func sqlserverDialect() *Dialect {
	return &Dialect{
		Name:        "sqlserver",
		DriverName:  "sqlserver",
		DefaultPort: 1433,
		MaxParams:   2100,
		MaxRows:     1000,
		placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
		quote:       [2]string{"[", "]"},
		limit: func(query string, n int) string {
			return fmt.Sprintf("%s OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY", query, n)
		},
		dsn: func(cfg Config) (string, error) {
			u := url.URL{
				Scheme: "sqlserver",
				Host:   hostPort(cfg),
			}
			if cfg.User != "" {
				u.User = url.UserPassword(cfg.User, cfg.Password)
			}
			if cfg.Name != "" {
				u.RawQuery = url.Values{"database": {cfg.Name}}.Encode()
			}
			return u.String(), nil
		},
	}
}

func sqliteDialect() *Dialect {
	return &Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		MaxParams:   32766,
		placeholder: questionMark,
		quote:       [2]string{`"`, `"`},
		limit:       limitClause,
		dsn: func(cfg Config) (string, error) {
			if cfg.Name == "" {
				return "", errors.New("sqlite needs a database file path")
			}
			return cfg.Name, nil
		},
	}
}
