package queryeventmonitoring

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	arguments "github.com/newrelic/nri-mysql-events/src/args"
	"gopkg.in/yaml.v3"
)

// PollConfig is the optional YAML file read from --poll_config_file. Fields left out of the
// file keep the value given on the command line.
type PollConfig struct {
	PollInterval      *int     `yaml:"poll_interval"`
	ExcludedDatabases []string `yaml:"excluded_databases"`
	MaxRowsPerPoll    *int     `yaml:"max_rows_per_poll"`
	Verbose           *bool    `yaml:"verbose"`
}

func LoadConfig(configFile string) (*PollConfig, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var config PollConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFile, err)
	}
	return &config, nil
}

// Apply overlays the file settings on args.
func (c *PollConfig) Apply(args *arguments.ArgumentList) error {
	if c.PollInterval != nil {
		args.PollInterval = *c.PollInterval
	}
	if c.MaxRowsPerPoll != nil {
		args.MaxRowsPerPoll = *c.MaxRowsPerPoll
	}
	if c.Verbose != nil {
		args.Verbose = *c.Verbose
	}
	if c.ExcludedDatabases != nil {
		encoded, err := json.Marshal(c.ExcludedDatabases)
		if err != nil {
			return err
		}
		args.ExcludedDatabases = string(encoded)
	}
	return nil
}
