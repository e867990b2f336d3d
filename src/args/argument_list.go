// Package args contains the command line arguments of the integration.
package args

import (
	"fmt"

	sdkArgs "github.com/newrelic/infra-integrations-sdk/v3/args"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
)

// ArgumentList is the set of flags accepted by the integration binary.
type ArgumentList struct {
	sdkArgs.DefaultArgumentList
	Hostname               string `default:"localhost" help:"Hostname or IP where MySQL is running."`
	Port                   int    `default:"3306" help:"Port on which MySQL server is listening."`
	Socket                 string `default:"" help:"MySQL Socket file."`
	Username               string `help:"Username for accessing the database."`
	Password               string `help:"Password for the given user."`
	Database               string `help:"Database name"`
	ExtraConnectionURLArgs string `default:"" help:"Specify extra connection parameters as attr1=val1&attr2=val2."`
	RemoteMonitoring       bool   `default:"false" help:"Identifies the monitored entity as 'remote'. In doubt: set to true."`
	EnableTLS              bool   `default:"false" help:"Use a secure (TLS) connection."`
	InsecureSkipVerify     bool   `default:"false" help:"Skip verification of the server's certificate when using TLS."`
	ShowVersion            bool   `default:"false" help:"Print build information and exit"`
	PollInterval           int    `default:"1000000" help:"Minimum microseconds between polls of performance_schema.events_statements_history. Must be at least 1000000."`
	ExcludedDatabases      string `default:"[]" help:"A JSON array that list databases that will be excluded from collection. Statements run in these databases are not reported."`
	MaxRowsPerPoll         int    `default:"1000" help:"Number of statement rows read per query while paging through the statement history."`
	RunDuration            int    `default:"0" help:"Seconds to keep polling before exiting. 0 polls until interrupted."`
	PollConfigFile         string `default:"" help:"Optional YAML file overriding the poll settings."`
	MetricsAddress         string `default:"" help:"Address to serve Prometheus self-metrics on, e.g. :9104. Empty disables it."`
	AppName                string `default:"" help:"New Relic APM application name used to trace the integration's own queries."`
	LicenseKey             string `default:"" help:"New Relic license key for APM tracing of the integration's own queries."`
}

// Validate checks the arguments that can be verified without contacting the server.
func (args ArgumentList) Validate() error {
	if args.Hostname == "" && args.Socket == "" {
		return ErrMissingEndpoint
	}
	if args.Username == "" {
		return ErrMissingUsername
	}
	if minimum := constants.MinPollInterval.Microseconds(); int64(args.PollInterval) < minimum {
		return fmt.Errorf("%w: got %dus, need at least %dus", ErrInvalidPollInterval, args.PollInterval, minimum)
	}
	if args.MaxRowsPerPoll <= 0 {
		return ErrInvalidRowLimit
	}
	if args.RunDuration < 0 {
		return ErrInvalidRunDuration
	}
	return nil
}
