package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/newrelic/infra-integrations-sdk/v3/data/attribute"
	"github.com/newrelic/infra-integrations-sdk/v3/data/metric"
	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
	arguments "github.com/newrelic/nri-mysql-events/src/args"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
)

func FatalIfErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func CreateNodeEntity(
	i *integration.Integration,
	remoteMonitoring bool,
	hostname string,
	port int,
) (*integration.Entity, error) {
	if remoteMonitoring {
		return i.Entity(fmt.Sprint(hostname, ":", port), constants.NodeEntityType)
	}
	return i.LocalEntity(), nil
}

func CreateMetricSet(e *integration.Entity, sampleName string, args arguments.ArgumentList) *metric.Set {
	return MetricSet(
		e,
		sampleName,
		args.Hostname,
		args.Port,
		args.RemoteMonitoring,
	)
}

func MetricSet(e *integration.Entity, eventType, hostname string, port int, remoteMonitoring bool) *metric.Set {
	if remoteMonitoring {
		return e.NewMetricSet(
			eventType,
			attribute.Attr("hostname", hostname),
			attribute.Attr("port", strconv.Itoa(port)),
		)
	}

	return e.NewMetricSet(
		eventType,
		attribute.Attr("port", strconv.Itoa(port)),
	)
}

// GetExcludedDatabases merges the user supplied JSON list with the default system
// schemas. The result is sorted so the generated IN clause is stable between polls.
func GetExcludedDatabases(excludedDatabasesList string) ([]string, error) {
	var excludedDatabases []string
	if strings.TrimSpace(excludedDatabasesList) != "" {
		if err := json.Unmarshal([]byte(excludedDatabasesList), &excludedDatabases); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidExcludedDatabasesFormat, err)
		}
	}

	uniqueSchemas := make(map[string]struct{})
	for _, schema := range constants.DefaultExcludedDatabases {
		uniqueSchemas[schema] = struct{}{}
	}
	for _, schema := range excludedDatabases {
		uniqueSchemas[strings.TrimSpace(schema)] = struct{}{}
	}

	result := make([]string, 0, len(uniqueSchemas))
	for schema := range uniqueSchemas {
		result = append(result, schema)
	}
	sort.Strings(result)

	return result, nil
}

// SetMetric sets a metric in the given metric set.
func SetMetric(metricSet *metric.Set, name string, value interface{}, sourceType string) {
	switch sourceType {
	case "gauge":
		err := metricSet.SetMetric(name, value, metric.GAUGE)
		if err != nil {
			log.Warn("Error setting gauge metric: %v", err)
		}
	case "attribute":
		err := metricSet.SetMetric(name, value, metric.ATTRIBUTE)
		if err != nil {
			log.Warn("Error setting attribute metric: %v", err)
		}
	default:
		err := metricSet.SetMetric(name, value, metric.GAUGE)
		if err != nil {
			log.Warn("Error setting default gauge metric: %v", err)
		}
	}
}

// IngestMetric turns each struct in metricList into a metric set named eventName. Fields
// are mapped through their metric_name and source_type tags; untagged fields are skipped.
// The integration is published every MetricSetLimit sets to bound payload size.
func IngestMetric(metricList []interface{}, eventName string, i *integration.Integration, args arguments.ArgumentList) error {
	instanceEntity, err := CreateNodeEntity(i, args.RemoteMonitoring, args.Hostname, args.Port)
	if err != nil {
		log.Error("Error creating entity: %v", err)
		return err
	}

	metricCount := 0
	for _, model := range metricList {
		if model == nil {
			continue
		}

		modelValue := reflect.ValueOf(model)
		if modelValue.Kind() == reflect.Ptr {
			modelValue = modelValue.Elem()
		}
		if !modelValue.IsValid() || modelValue.Kind() != reflect.Struct {
			continue
		}

		metricCount++
		metricSet := CreateMetricSet(instanceEntity, eventName, args)
		modelType := modelValue.Type()

		for fieldIndex := 0; fieldIndex < modelValue.NumField(); fieldIndex++ {
			field := modelValue.Field(fieldIndex)
			fieldType := modelType.Field(fieldIndex)
			metricName := fieldType.Tag.Get("metric_name")
			if metricName == "" || metricName == "-" {
				continue
			}
			sourceType := fieldType.Tag.Get("source_type")

			if field.Kind() == reflect.Ptr && !field.IsNil() {
				SetMetric(metricSet, metricName, field.Elem().Interface(), sourceType)
			} else if field.Kind() != reflect.Ptr {
				SetMetric(metricSet, metricName, field.Interface(), sourceType)
			}
		}

		if metricCount >= constants.MetricSetLimit {
			metricCount = 0
			if err := i.Publish(); err != nil {
				log.Error("Error publishing metrics: %v", err)
				return err
			}
			instanceEntity, err = CreateNodeEntity(i, args.RemoteMonitoring, args.Hostname, args.Port)
			if err != nil {
				log.Error("Error creating entity: %v", err)
				return err
			}
		}
	}

	if metricCount > 0 {
		if err := i.Publish(); err != nil {
			log.Error("Error publishing metrics: %v", err)
			return err
		}
	}
	return nil
}
