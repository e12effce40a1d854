package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `envconfig:"CHAT_SERVER_ADDR" default:"127.0.0.1:8000"`
	Username      string `envconfig:"CHAT_USERNAME" required:"true"`
	Colours       bool   `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run dials the relay, sends the username handshake, then pumps incoming
// lines to stdout and stdin lines to the server until either side closes.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", config.ServerAddress)
	if _, err = fmt.Fprintf(conn, "%s\n", config.Username); err != nil {
		return exitRuntime, fmt.Errorf("handshake failed: %w", err)
	}

	// Close the connection when the context is canceled so both pumps stop.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		printIncoming(conn, config)
	}()

	go forwardStdin(conn)

	<-done
	return exitOK, nil
}

// printIncoming renders server lines: system notices in green, direct and
// broadcast messages as-is.
func printIncoming(conn net.Conn, config Config) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if config.Colours && strings.HasPrefix(line, "New client ") {
			fmt.Println(color.New(color.FgGreen).Render(line))
			continue
		}
		fmt.Println(line)
	}
}

func forwardStdin(conn net.Conn) {
	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		if _, err := fmt.Fprintf(conn, "%s\n", stdin.Text()); err != nil {
			return
		}
		if stdin.Text() == "quit" {
			return
		}
	}
}
