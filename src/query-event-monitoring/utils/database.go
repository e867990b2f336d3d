package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/newrelic/go-agent/v3/integrations/nrmysql"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
)

// DataSource is the subset of *sqlx.DB the collectors need.
type DataSource interface {
	Close()
	QueryX(string) (*sqlx.Rows, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

type Database struct {
	source *sqlx.DB
}

// OpenSQLXDB opens the database through the nrmysql driver, so that queries run with a
// New Relic transaction in their context are recorded as datastore segments.
func OpenSQLXDB(dsn string) (DataSource, error) {
	source, err := sqlx.Open("nrmysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening DSN: %w", err)
	}

	return NewDatabase(source), nil
}

// NewDatabase wraps an already opened connection pool.
func NewDatabase(source *sqlx.DB) *Database {
	return &Database{source: source}
}

func (db *Database) Close() {
	if err := db.source.Close(); err != nil {
		log.Warn("Error closing database: %v", err)
	}
}

func (db *Database) QueryX(query string) (*sqlx.Rows, error) {
	return db.source.Queryx(query)
}

func (db *Database) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return db.source.QueryxContext(ctx, query, args...)
}

// GenerateDSN builds the driver DSN from the integration arguments.
func GenerateDSN(args arguments.ArgumentList, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = args.Username
	cfg.Passwd = args.Password
	cfg.DBName = database

	if args.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = args.Socket
	} else {
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(args.Hostname, strconv.Itoa(args.Port))
	}

	if args.EnableTLS {
		cfg.TLSConfig = "true"
		if args.InsecureSkipVerify {
			cfg.TLSConfig = "skip-verify"
		}
	}

	if args.ExtraConnectionURLArgs != "" {
		params, err := url.ParseQuery(args.ExtraConnectionURLArgs)
		if err != nil {
			log.Warn("Ignoring extra connection arguments %q: %v", args.ExtraConnectionURLArgs, err)
		} else {
			cfg.Params = make(map[string]string, len(params))
			for key := range params {
				cfg.Params[key] = params.Get(key)
			}
		}
	}

	return cfg.FormatDSN()
}

// CollectMetrics runs a prepared query and struct-scans every row into T.
func CollectMetrics[T any](ctx context.Context, db DataSource, preparedQuery string, preparedArgs ...interface{}) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.TimeoutDuration)
	defer cancel()

	rows, err := db.QueryxContext(ctx, preparedQuery, preparedArgs...)
	if err != nil {
		return []T{}, err
	}
	defer rows.Close()

	var metrics []T
	for rows.Next() {
		var metric T
		if err := rows.StructScan(&metric); err != nil {
			return []T{}, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return []T{}, err
	}

	return metrics, nil
}
