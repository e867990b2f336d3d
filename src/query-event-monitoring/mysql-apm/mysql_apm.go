package mysqlapm

import (
	"context"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
)

// Tracer records the integration's own queries as New Relic APM transactions. A Tracer
// without an application is valid and traces nothing.
type Tracer struct {
	app *newrelic.Application
}

// InitNewRelicApp creates the APM application when both an application name and a
// license key are configured.
func InitNewRelicApp(appName, licenseKey string, connectTimeout time.Duration) *Tracer {
	if appName == "" || licenseKey == "" {
		log.Debug("New Relic APM tracing disabled: app name or license key not set")
		return &Tracer{}
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(appName),
		newrelic.ConfigLicense(licenseKey),
		newrelic.ConfigDebugLogger(os.Stderr),
		newrelic.ConfigDatastoreRawQuery(true),
	)
	if err != nil {
		log.Error("Error creating new relic application: %s", err.Error())
		return &Tracer{}
	}

	if err := app.WaitForConnection(connectTimeout); err != nil {
		log.Warn("New Relic Application did not connect: %v", err)
	} else {
		log.Debug("New Relic application initialized successfully")
	}

	return &Tracer{app: app}
}

// Enabled reports whether transactions are recorded.
func (t *Tracer) Enabled() bool {
	return t != nil && t.app != nil
}

// StartTransaction returns nil when tracing is disabled. Methods on a nil
// *newrelic.Transaction are no-ops, so callers need not check.
func (t *Tracer) StartTransaction(name string) *newrelic.Transaction {
	if !t.Enabled() {
		return nil
	}
	return t.app.StartTransaction(name)
}

// WithTransaction attaches txn to ctx so the nrmysql driver records datastore segments.
func WithTransaction(ctx context.Context, txn *newrelic.Transaction) context.Context {
	if txn == nil {
		return ctx
	}
	return newrelic.NewContext(ctx, txn)
}

// Shutdown flushes pending data to New Relic, waiting at most timeout.
func (t *Tracer) Shutdown(timeout time.Duration) {
	if t.Enabled() {
		t.app.Shutdown(timeout)
	}
}
