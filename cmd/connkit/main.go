package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"connkit/pkg/auth"
	"connkit/pkg/config"
	"connkit/pkg/errors"
	"connkit/pkg/httpclient"
	"connkit/pkg/logger"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	method     = flag.String("method", "GET", "HTTP method")
	credential = flag.String("credential", "", "Name of a stored credential to authenticate with")
	promptKey  = flag.Bool("prompt-key", false, "Prompt for an API key instead of using a stored credential")
	timeout    = flag.Duration("timeout", 0, "Overall timeout for the probe, including retries")
	headers    keyValueFlags
	params     keyValueFlags
)

func main() {
	flag.Var(&headers, "header", "Request header as key=value (repeatable)")
	flag.Var(&params, "param", "Query parameter as key=value (repeatable)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: connkit [flags] <url>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	url := strings.TrimSpace(args[0])

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	authenticator, err := resolveAuthenticator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve credentials: %v\n", err)
		os.Exit(1)
	}

	client, err := httpclient.NewFromConfig(cfg, httpclient.WithAuthenticator(authenticator))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	_, resp, err := client.Send(ctx, httpclient.Request{
		Method:       *method,
		URL:          url,
		Headers:      headers.values,
		Params:       params.values,
		DedupeParams: true,
	})
	duration := time.Since(start)

	if err != nil {
		var reqErr *errors.RequestError
		if stderrors.As(err, &reqErr) {
			logger.GetLogger().ErrorWithFields("probe failed", map[string]interface{}{
				"failure_kind": string(reqErr.Kind),
				"status":       reqErr.StatusCode,
				"message":      reqErr.UserMessage(),
			})
		} else {
			logger.GetLogger().WithError(err).Error("probe failed")
		}
		os.Exit(1)
	}

	logger.GetLogger().InfoWithFields("probe succeeded", map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
		"bytes":       len(resp.Body()),
	})
	fmt.Println(resp.Text())
}

func resolveAuthenticator() (auth.Authenticator, error) {
	if *promptKey {
		fmt.Fprint(os.Stderr, "API key: ")
		key, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key: %w", err)
		}
		return &auth.APIKey{Key: strings.TrimSpace(string(key))}, nil
	}

	if *credential != "" {
		manager, err := auth.NewManager()
		if err != nil {
			return nil, err
		}
		cred, err := manager.Retrieve(*credential)
		if err != nil {
			return nil, err
		}
		return cred.Authenticator(), nil
	}

	return auth.None{}, nil
}

// keyValueFlags collects repeated key=value flags into a map.
type keyValueFlags struct {
	values map[string]string
}

func (f *keyValueFlags) String() string { return fmt.Sprint(f.values) }

func (f *keyValueFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = val
	return nil
}
