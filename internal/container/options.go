// Package container wires the application with samber/do.
package container

import (
	"fmt"
	"strings"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Options is the server configuration, read from flags and SERVICE_* environment variables.
type Options struct {
	Port            int    `default:"8888"         help:"Port to listen on"                                        short:"p"`
	BaseURL         string `default:""             help:"Public base URL for short links, default http://localhost:<port>" name:"base-url"`
	StoreDriver     string `default:"sqlite"       help:"Mapping store: sqlite, postgres or memory"                name:"store-driver" short:"s"`
	SQLitePath      string `default:"shortener.db" help:"SQLite database file"                                     name:"sqlite-path"`
	DatabaseURL     string `default:""             help:"PostgreSQL connection string"                             name:"database-url"`
	RedisAddr       string `default:""             help:"Redis address, enables the redis cache and event streams" name:"redis-addr"   short:"r"`
	CacheTTLSeconds int    `default:"300"          help:"Cache entry lifetime in seconds, 0 disables caching"      name:"cache-ttl-seconds"`
	LogFormat       string `default:"console"      help:"Log format: console or json"                              name:"log-format"`
	LogLevel        string `default:"info"         help:"Log level"                                                name:"log-level"`
	LogFile         string `default:""             help:"Also write JSON logs to this rotating file"               name:"log-file"`
	CORSOrigins     string `default:"*"            help:"Comma separated list of allowed CORS origins"             name:"cors-origins"`
	ConsumerGroup   string `default:"audit"        help:"Redis stream consumer group for audit events"             name:"consumer-group"`
}

// PublicBaseURL returns the base URL short links are built from, without a trailing slash.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// AllowedOrigins splits CORSOrigins into its entries.
func (o *Options) AllowedOrigins() []string {
	var origins []string

	for _, origin := range strings.Split(o.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}
