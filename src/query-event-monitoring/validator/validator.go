package validator

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/newrelic/infra-integrations-sdk/v3/log"
	constants "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/constants"
	queries "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/queries"
	utils "github.com/newrelic/nri-mysql-events/src/query-event-monitoring/utils"
)

var essentialConsumers = []string{
	"events_statements_current",
	"events_statements_history",
}

var essentialInstruments = []string{
	"statement/%",
}

// ValidatePreconditions checks that the server records the statement history the
// integration polls.
func ValidatePreconditions(db utils.DataSource) error {
	performanceSchemaEnabled, err := isPerformanceSchemaEnabled(db)
	if err != nil {
		return err
	}

	if !performanceSchemaEnabled {
		log.Error("Performance Schema is not enabled. Skipping validation.")
		logEnablePerformanceSchemaInstructions(db)
		return utils.ErrPerformanceSchemaDisabled
	}

	if err := checkEssentialConsumers(db); err != nil {
		return fmt.Errorf("essential consumer check failed: %w", err)
	}

	if err := checkEssentialInstruments(db); err != nil {
		return fmt.Errorf("essential instruments check failed: %w", err)
	}
	return nil
}

func isPerformanceSchemaEnabled(db utils.DataSource) (bool, error) {
	rows, err := db.QueryX(queries.PerformanceSchemaEnabledQuery)
	if err != nil {
		return false, fmt.Errorf("failed to check Performance Schema status: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, fmt.Errorf("failed to check Performance Schema status: %w", err)
		}
		return false, utils.ErrNoRowsFound
	}

	var variableName, performanceSchemaEnabled string
	if err := rows.Scan(&variableName, &performanceSchemaEnabled); err != nil {
		return false, fmt.Errorf("failed to scan Performance Schema status: %w", err)
	}
	return performanceSchemaEnabled == "ON", nil
}

func checkEssentialConsumers(db utils.DataSource) error {
	quoted := make([]string, 0, len(essentialConsumers))
	for _, consumer := range essentialConsumers {
		quoted = append(quoted, fmt.Sprintf("'%s'", consumer))
	}
	query := queries.ConsumersQueryPrefix + strings.Join(quoted, ", ") + ");"

	rows, err := db.QueryX(query)
	if err != nil {
		return fmt.Errorf("failed to check essential consumers: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("Failed to close rows: %v", err)
		}
	}()

	for rows.Next() {
		var name, enabled string
		if err := rows.Scan(&name, &enabled); err != nil {
			return fmt.Errorf("failed to scan consumer row: %w", err)
		}
		if enabled != "YES" {
			log.Error("Essential consumer %s is not enabled. To enable it, run: UPDATE performance_schema.setup_consumers SET ENABLED = 'YES' WHERE NAME = '%s';", name, name)
			return fmt.Errorf("%w: %s", utils.ErrEssentialConsumerNotEnabled, name)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

func checkEssentialInstruments(db utils.DataSource) error {
	conditions := make([]string, 0, len(essentialInstruments))
	for _, instrument := range essentialInstruments {
		conditions = append(conditions, fmt.Sprintf("NAME LIKE '%s'", instrument))
	}
	query := queries.InstrumentsQueryPrefix + strings.Join(conditions, " OR ") + ";"

	rows, err := db.QueryX(query)
	if err != nil {
		return fmt.Errorf("failed to check essential instruments: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("Failed to close rows: %v", err)
		}
	}()

	for rows.Next() {
		var name, enabled string
		var timed sql.NullString
		if err := rows.Scan(&name, &enabled, &timed); err != nil {
			return fmt.Errorf("failed to scan instrument row: %w", err)
		}
		if enabled != "YES" || (timed.Valid && timed.String != "YES") {
			log.Error("Essential instrument %s is not fully enabled. To enable it, run: UPDATE performance_schema.setup_instruments SET ENABLED = 'YES', TIMED = 'YES' WHERE NAME = '%s';", name, name)
			return fmt.Errorf("%w: %s", utils.ErrEssentialInstrumentNotEnabled, name)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

func logEnablePerformanceSchemaInstructions(db utils.DataSource) {
	version, err := getMySQLVersion(db)
	if err != nil {
		log.Error("Failed to get MySQL version: %v", err)
		return
	}

	if isVersion8OrGreater(version) {
		log.Debug("To enable the Performance Schema, add the following lines to the [mysqld] section of my.cnf and restart the server:")
		log.Debug("performance_schema=ON")
		log.Debug("performance_schema_instrument='statement/%%=ON'")
		log.Debug("performance_schema_consumer_events_statements_current=ON")
		log.Debug("performance_schema_consumer_events_statements_history=ON")
	} else {
		log.Error("MySQL version %s is not supported. Only version 8.0+ is supported.", version)
	}
}

func getMySQLVersion(db utils.DataSource) (string, error) {
	rows, err := db.QueryX(queries.VersionQuery)
	if err != nil {
		return "", fmt.Errorf("failed to execute version query: %w", err)
	}
	defer rows.Close()

	var version string
	if rows.Next() {
		if err := rows.Scan(&version); err != nil {
			return "", fmt.Errorf("failed to scan version: %w", err)
		}
	}

	if version == "" {
		return "", utils.ErrMySQLVersion
	}
	return version, nil
}

func isVersion8OrGreater(version string) bool {
	majorVersion, _ := parseVersion(version)
	return majorVersion >= 8
}

// parseVersion extracts the major and minor version numbers, e.g. 8 and 0 from
// "8.0.36-log". Malformed strings give 0, 0.
func parseVersion(version string) (int, int) {
	parts := strings.Split(version, ".")
	if len(parts) < constants.MinVersionParts {
		return 0, 0
	}

	majorVersion, err := strconv.Atoi(parts[0])
	if err != nil {
		log.Error("Failed to parse major version: %v", err)
		return 0, 0
	}

	minorVersion, err := strconv.Atoi(parts[1])
	if err != nil {
		log.Error("Failed to parse minor version: %v", err)
		return 0, 0
	}

	return majorVersion, minorVersion
}
