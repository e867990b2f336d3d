package queryeventmonitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	eventpublisher "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/event-publisher"
	metrics "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/metrics"
	mysqlapm "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/mysql-apm"
	pollscheduler "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/poll-scheduler"
	rowsource "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/row-source"
	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
	validator "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/validator"
)

// PopulateQueryEvents connects to the server, checks that statement history is recorded,
// and reports completed statements until ctx is done.
func PopulateQueryEvents(ctx context.Context, args arguments.ArgumentList, i *integration.Integration, collectors *metrics.Collectors, tracer *mysqlapm.Tracer) error {
	var database string

	db, err := utils.OpenSQLXDB(utils.GenerateDSN(args, database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := validator.ValidatePreconditions(db); err != nil {
		return fmt.Errorf("preconditions failed: %w", err)
	}

	excludedDatabases, err := utils.GetExcludedDatabases(args.ExcludedDatabases)
	if err != nil {
		return err
	}

	scheduler, err := pollscheduler.New(
		pollscheduler.Config{
			Interval: time.Duration(args.PollInterval) * constants.PollIntervalResolution,
			Verbose:  args.Verbose,
		},
		pollscheduler.WithMetrics(collectors),
	)
	if err != nil {
		return err
	}

	source := rowsource.NewPerformanceSchemaSource(db, rowsource.Config{
		ExcludedDatabases: excludedDatabases,
		MaxRows:           args.MaxRowsPerPoll,
	}, tracer)

	start := time.Now()
	log.Debug("Beginning to poll statement history every %v", scheduler.Interval())
	published, err := eventpublisher.New(i, args, scheduler, source).Run(ctx)
	log.Debug("Stopped polling after %d polls and %d events in %v", scheduler.PollCount(), published, time.Since(start))
	return err
}
