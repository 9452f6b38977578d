// Command procuremesh processes a single purchase request from the command
// line and prints a markdown report.
//
// Usage:
//
//	procuremesh -user alice-001 -request "I need a new laptop for development"
//
// Configuration comes from the environment (optionally a .env file):
// PROCUREMESH_PROVIDER, PROCUREMESH_MODEL, PROCUREMESH_DATA_DIR,
// PROCUREMESH_RUN_TIMEOUT and the provider's API key.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/procuremesh"
	"github.com/hupe1980/procuremesh/config"
	"github.com/hupe1980/procuremesh/hosting"
	anthropicprovider "github.com/hupe1980/procuremesh/hosting/anthropic"
	openaiprovider "github.com/hupe1980/procuremesh/hosting/openai"
	"github.com/hupe1980/procuremesh/logging"
	"github.com/hupe1980/procuremesh/report"
)

func main() {
	userID := flag.String("user", "", "user ID of the requester")
	request := flag.String("request", "", "free-form purchase request text")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *userID == "" || *request == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	level := logging.LogLevelInfo
	if *verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewSlogLogger(level, "text", false)

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	mesh, err := procuremesh.New(cfg.DataDir, provider, func(o *procuremesh.Options) {
		o.RunTimeout = cfg.RunTimeout
		o.Logger = logger
	})
	if err != nil {
		log.Fatalf("setup: %v", err)
	}

	result := mesh.ProcessPurchaseRequest(context.Background(), *userID, *request)

	fmt.Println(report.Markdown(result))

	if !result.Success {
		os.Exit(1)
	}
}

func buildProvider(cfg *config.Config, logger logging.Logger) (hosting.Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropicprovider.NewProvider(func(o *anthropicprovider.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
			o.Logger = logger
		}), nil
	case config.ProviderOpenAI:
		return openaiprovider.NewProvider(func(o *openaiprovider.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Logger = logger
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
