package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tiny_http1.0_server/pkg/tinyServer"
)

var (
	port        = flag.Int("port", 8080, "port number")
	root        = flag.String("root", ".", "document root")
	readTimeout = flag.Duration("read-timeout", 0, "request line read timeout, 0 waits forever")
	verbose     bool
	help        bool
)

func init() {
	flag.BoolVar(&verbose, "v", false, "turn on verbose mode")
	flag.BoolVar(&verbose, "verbose", false, "turn on verbose mode")
	flag.BoolVar(&help, "?", false, "print out this message")
	flag.BoolVar(&help, "help", false, "print out this message")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-options]\n\nwhere options include:\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if help {
		flag.Usage()
		return
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	server := tinyServer.NewHTTPServer(tinyServer.Config{
		Root:        *root,
		Verbose:     verbose,
		ReadTimeout: *readTimeout,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, ":"+strconv.Itoa(*port)); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
