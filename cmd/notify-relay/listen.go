package main

import (
	"context"
	"io"
	"net"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ddorgan/substrate/cmd"
	"github.com/ddorgan/substrate/pkg/logging"
	"github.com/ddorgan/substrate/pkg/notify"
)

// tcpChannel adapts a *net.TCPConn to notify.Channel; *net.TCPConn already
// implements CloseWrite, so this is a thin rename rather than real
// adaptation logic.
func tcpChannel(conn *net.TCPConn) notify.Channel {
	return notify.NewChannelFromConn(conn)
}

func listenMain(command *cobra.Command, arguments []string) error {
	configuration, err := loadRelayConfiguration(listenConfiguration.config)
	if err != nil {
		return err
	}
	if listenConfiguration.address != "" {
		configuration.Address = listenConfiguration.address
	}
	if listenConfiguration.protocol != "" {
		configuration.Protocol = listenConfiguration.protocol
	}
	if listenConfiguration.logLevel != "" {
		configuration.LogLevel = listenConfiguration.logLevel
	}

	logger, err := loggerForLevel(configuration.LogLevel)
	if err != nil {
		return err
	}

	address, err := net.ResolveTCPAddr("tcp", configuration.Address)
	if err != nil {
		return errors.Wrap(err, "unable to resolve listen address")
	}
	listener, err := net.ListenTCP("tcp", address)
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	defer listener.Close()

	logger.Printf("listening on %s for protocol %q", listener.Addr(), configuration.Protocol)

	descriptor := notify.NewInWithLogger(configuration.Protocol, logger)
	for {
		conn, err := listener.AcceptTCP()
		if err != nil {
			return errors.Wrap(err, "unable to accept connection")
		}
		go serveConnection(descriptor, conn, logger)
	}
}

// serveConnection upgrades a single accepted connection and relays its
// messages to the log, closing the connection once the peer's write half is
// closed or an error occurs.
func serveConnection(descriptor *notify.In, conn *net.TCPConn, logger *logging.Logger) {
	connectionID := uuid.NewString()
	sublogger := logger.Sublogger(connectionID)

	channel := tcpChannel(conn)
	initial, substream, err := descriptor.Upgrade(context.Background(), channel)
	if err != nil {
		sublogger.Warnf("handshake failed: %v", err)
		channel.Close()
		return
	}
	sublogger.Printf("accepted handshake, initial message was %s", humanize.Bytes(uint64(len(initial))))

	if err := substream.SendHandshakeReply([]byte("ack:" + connectionID)); err != nil {
		sublogger.Warnf("unable to send handshake reply: %v", err)
		substream.Close()
		return
	}

	for {
		message, err := substream.Recv()
		if err == io.EOF {
			sublogger.Printf("peer closed the substream")
			substream.Close()
			return
		} else if err != nil {
			sublogger.Warnf("receive failed: %v", err)
			substream.Close()
			return
		}
		sublogger.Printf("received %s: %s", humanize.Bytes(uint64(len(message))), message)
	}
}

var listenCommand = &cobra.Command{
	Use:   "listen",
	Short: "Listen for and relay inbound notifications",
	Run:   cmd.Mainify(listenMain),
	Args:  cmd.DisallowArguments,
}

var listenConfiguration struct {
	config   string
	address  string
	protocol string
	logLevel string
}

func init() {
	flags := listenCommand.Flags()
	flags.SortFlags = false
	flags.StringVar(&listenConfiguration.config, "config", "", "Load settings from a YAML configuration file")
	flags.StringVar(&listenConfiguration.address, "address", "", "Override the listen address")
	flags.StringVar(&listenConfiguration.protocol, "protocol", "", "Override the protocol name")
	flags.StringVar(&listenConfiguration.logLevel, "log-level", "", "Override the log level (disabled, error, warn, info, debug)")
}
