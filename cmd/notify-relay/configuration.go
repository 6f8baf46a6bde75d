package main

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ddorgan/substrate/pkg/logging"
)

// relayConfiguration holds the settings shared by the listen and send
// subcommands. It is YAML-loadable; since neither subcommand has more than
// a handful of fields, there's a single flat struct rather than layered
// sources.
type relayConfiguration struct {
	// Address is the TCP address to listen on or dial, e.g. "127.0.0.1:4321".
	Address string `yaml:"address"`
	// Protocol is the protocol name negotiated on the channel.
	Protocol string `yaml:"protocol"`
	// LogLevel names a logging.Level understood by logging.NameToLevel.
	LogLevel string `yaml:"logLevel"`
}

// defaultRelayConfiguration returns the baseline configuration, overridden
// first by an optional config file and then by explicit flags.
func defaultRelayConfiguration() *relayConfiguration {
	return &relayConfiguration{
		Address:  "127.0.0.1:4321",
		Protocol: "/notify-relay/demo/1",
		LogLevel: "info",
	}
}

// loadRelayConfiguration reads path (if non-empty) and merges it onto the
// defaults. A missing path is an error; an empty path is a no-op, matching
// the optionality of --config.
func loadRelayConfiguration(path string) (*relayConfiguration, error) {
	configuration := defaultRelayConfiguration()
	if path == "" {
		return configuration, nil
	}

	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read configuration file")
	}
	if err := yaml.Unmarshal(contents, configuration); err != nil {
		return nil, errors.Wrap(err, "unable to parse configuration file")
	}
	return configuration, nil
}

// loggerForLevel constructs a root logger at the named level, writing to
// standard error, or fails if the name is unrecognized.
func loggerForLevel(name string) (*logging.Logger, error) {
	level, ok := logging.NameToLevel(name)
	if !ok {
		return nil, errors.Errorf("unknown log level: %s", name)
	}
	return logging.NewLogger(level, os.Stderr), nil
}
