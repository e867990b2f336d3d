package eventpublisher

import (
	"context"
	"fmt"

	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	pollscheduler "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/poll-scheduler"
	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
)

// Publisher pulls events from a Scheduler and reports them as MysqlQueryEventSample
// metric sets.
type Publisher struct {
	i         *integration.Integration
	args      arguments.ArgumentList
	scheduler *pollscheduler.Scheduler
	source    pollscheduler.RowSource
}

func New(i *integration.Integration, args arguments.ArgumentList, scheduler *pollscheduler.Scheduler, source pollscheduler.RowSource) *Publisher {
	return &Publisher{
		i:         i,
		args:      args,
		scheduler: scheduler,
		source:    source,
	}
}

// Run delivers events until ctx is done and returns how many were published. A batch is
// flushed once the scheduler has nothing buffered or the batch reaches MetricSetLimit.
// Cancellation is observed between pulls, so a poll already sleeping finishes first.
func (p *Publisher) Run(ctx context.Context) (int, error) {
	published := 0
	batch := make([]interface{}, 0, constants.MetricSetLimit)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := utils.IngestMetric(batch, constants.QueryEventSampleName, p.i, p.args); err != nil {
			return fmt.Errorf("publishing %d query events: %w", len(batch), err)
		}
		published += len(batch)
		log.Debug("Published %d query events", len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				return published, err
			}
			return published, nil
		default:
		}

		event, ok := p.scheduler.NextEvent(p.source)
		if ok {
			batch = append(batch, event)
		}

		if p.scheduler.Pending() == 0 || len(batch) >= constants.MetricSetLimit {
			if err := flush(); err != nil {
				return published, err
			}
		}
	}
}
