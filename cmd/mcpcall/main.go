// Command mcpcall spawns a server, performs one call and prints the result.
//
//	mcpcall [-params JSON] [-max-noise N] <method> -- <server> [args...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/mcp-stdio-go/client"
	"github.com/ggoodman/mcp-stdio-go/internal/logctx"
)

const usage = "usage: mcpcall [-params JSON] [-max-noise N] <method> -- <server> [args...]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "mcpcall:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcpcall", flag.ContinueOnError)
	fs.SetOutput(stderr)
	params := fs.String("params", "", "JSON params for the call")
	maxNoise := fs.Int("max-noise", 0, "unmatched lines tolerated per response (0 = unlimited)")
	logLevel := fs.String("log-level", "warn", "debug|info|warn|error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	method, server, args, err := splitArgs(fs.Args())
	if err != nil {
		fs.Usage()
		return err
	}

	var p any
	if *params != "" {
		if !json.Valid([]byte(*params)) {
			return fmt.Errorf("-params is not valid JSON")
		}
		p = json.RawMessage(*params)
	}

	logger := logctx.NewLogger(stderr, logctx.ParseLevel(*logLevel))
	c := client.New(server, args,
		client.WithLogger(logger),
		client.WithMaxNoise(*maxNoise),
	)
	res, err := c.Call(ctx, method, p)
	if err != nil {
		var remote *client.RemoteError
		if errors.As(err, &remote) {
			if remote.IsMethodNotFound() {
				return fmt.Errorf("%s is not served by %s", remote.Method, server)
			}
			return fmt.Errorf("%s failed (code %d): %s", remote.Method, remote.Code, remote.Message)
		}
		return err
	}
	_, err = fmt.Fprintln(stdout, string(res))
	return err
}

// splitArgs splits "<method> -- <server> [args...]". The separator is
// optional when the method is followed directly by the server path.
func splitArgs(rest []string) (method, server string, args []string, err error) {
	if len(rest) < 2 {
		return "", "", nil, errors.New("method and server are required")
	}
	method, rest = rest[0], rest[1:]
	if rest[0] == "--" {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0] == "" {
		return "", "", nil, errors.New("server is required")
	}
	return method, rest[0], rest[1:], nil
}
