package main

import (
	"context"
	"net"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ddorgan/substrate/cmd"
	"github.com/ddorgan/substrate/pkg/notify"
)

func sendMain(command *cobra.Command, arguments []string) error {
	configuration, err := loadRelayConfiguration(sendConfiguration.config)
	if err != nil {
		return err
	}
	if sendConfiguration.address != "" {
		configuration.Address = sendConfiguration.address
	}
	if sendConfiguration.protocol != "" {
		configuration.Protocol = sendConfiguration.protocol
	}
	if sendConfiguration.logLevel != "" {
		configuration.LogLevel = sendConfiguration.logLevel
	}

	logger, err := loggerForLevel(configuration.LogLevel)
	if err != nil {
		return err
	}

	address, err := net.ResolveTCPAddr("tcp", configuration.Address)
	if err != nil {
		return errors.Wrap(err, "unable to resolve address")
	}
	conn, err := net.DialTCP("tcp", nil, address)
	if err != nil {
		return errors.Wrap(err, "unable to connect")
	}
	channel := tcpChannel(conn)

	descriptor := notify.NewOutWithLogger(configuration.Protocol, []byte(sendConfiguration.initial), logger)
	reply, substream, err := descriptor.Upgrade(context.Background(), channel)
	if err != nil {
		return errors.Wrap(err, "handshake failed")
	}
	defer substream.Close()
	logger.Printf("handshake accepted, reply was %s: %s", humanize.Bytes(uint64(len(reply))), reply)

	for i := 0; i < sendConfiguration.count; i++ {
		message := []byte(sendConfiguration.message)
		if err := substream.SendMessage(message); err != nil {
			return errors.Wrap(err, "unable to enqueue message")
		}
	}
	if err := substream.Flush(); err != nil {
		return errors.Wrap(err, "unable to flush")
	}
	logger.Printf("sent %d message(s)", sendConfiguration.count)

	return nil
}

var sendCommand = &cobra.Command{
	Use:   "send",
	Short: "Connect, perform the handshake, and send notifications",
	Run:   cmd.Mainify(sendMain),
	Args:  cmd.DisallowArguments,
}

var sendConfiguration struct {
	config   string
	address  string
	protocol string
	logLevel string
	initial  string
	message  string
	count    int
}

func init() {
	flags := sendCommand.Flags()
	flags.SortFlags = false
	flags.StringVar(&sendConfiguration.config, "config", "", "Load settings from a YAML configuration file")
	flags.StringVar(&sendConfiguration.address, "address", "", "Override the address to connect to")
	flags.StringVar(&sendConfiguration.protocol, "protocol", "", "Override the protocol name")
	flags.StringVar(&sendConfiguration.logLevel, "log-level", "", "Override the log level (disabled, error, warn, info, debug)")
	flags.StringVar(&sendConfiguration.initial, "initial", "", "The initial handshake message to send")
	flags.StringVar(&sendConfiguration.message, "message", "hello", "The message body to send")
	flags.IntVar(&sendConfiguration.count, "count", 1, "The number of times to send the message")
}
