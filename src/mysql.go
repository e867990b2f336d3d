//go:generate goversioninfo
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	queryeventmonitoring "github.com/newrelic/nri-mysql-events/src/query-event-monitoring"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	metrics "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/metrics"
	mysqlapm "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/mysql-apm"
	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	args               arguments.ArgumentList
	integrationVersion = "0.0.0"
	gitCommit          = ""
	buildDate          = ""
)

func main() {
	i, err := integration.New(constants.IntegrationName, integrationVersion, integration.Args(&args))
	utils.FatalIfErr(err)

	if args.ShowVersion {
		fmt.Printf(
			"New Relic %s integration Version: %s, Platform: %s, GoVersion: %s, GitCommit: %s, BuildDate: %s\n",
			cases.Title(language.Und).String(strings.Replace(constants.IntegrationName, "com.newrelic.", "", 1)),
			integrationVersion,
			fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			runtime.Version(),
			gitCommit,
			buildDate)
		os.Exit(0)
	}

	if args.PollConfigFile != "" {
		config, err := queryeventmonitoring.LoadConfig(args.PollConfigFile)
		utils.FatalIfErr(err)
		utils.FatalIfErr(config.Apply(&args))
	}

	log.SetupLogging(args.Verbose)
	utils.FatalIfErr(args.Validate())

	tracer := mysqlapm.InitNewRelicApp(args.AppName, args.LicenseKey, constants.APMConnectTimeout)
	defer tracer.Shutdown(constants.APMConnectTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if args.RunDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(args.RunDuration)*time.Second)
		defer cancel()
	}

	collectors := metrics.New()
	if args.MetricsAddress != "" {
		server := &http.Server{
			Addr:              args.MetricsAddress,
			Handler:           collectors.Handler(),
			ReadHeaderTimeout: constants.TimeoutDuration,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server stopped: %v", err)
			}
		}()
		defer server.Close()
		log.Debug("Serving self metrics on %s", args.MetricsAddress)
	}

	utils.FatalIfErr(queryeventmonitoring.PopulateQueryEvents(ctx, args, i, collectors, tracer))
}
