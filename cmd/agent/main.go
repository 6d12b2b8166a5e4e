package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instance-doctor/pkg/agent"
	"instance-doctor/pkg/config"
	"instance-doctor/pkg/inspect"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/version"
)

func main() {
	settings, err := config.Load(os.Getenv("DOCTOR_CONFIG"))
	if err != nil {
		base := dlog.Base()
		base.Fatal().Err(err).Msg("load config")
	}

	host := flag.String("host", settings.Agent.Host, "host name reported with every batch")
	snapshots := flag.String("snapshots", settings.Agent.Snapshots, "inspector output file (yaml or json)")
	controller := flag.String("controller", settings.Agent.Controller, "controller base URL")
	interval := flag.Duration("interval", settings.Evaluate.Interval, "push interval; 0 pushes once and exits")
	cachePath := flag.String("cache", settings.Agent.CachePath, "sqlite snapshot cache path (empty disables)")
	caFile := flag.String("ca", config.Getenv("CA_FILE", ""), "CA file for controller TLS (optional)")
	clientCert := flag.String("cert", "", "client TLS certificate (for mTLS)")
	clientKey := flag.String("key", "", "client TLS key (for mTLS)")
	insecure := flag.Bool("insecure", false, "skip TLS verify for controller (not recommended)")
	logLevel := flag.String("log-level", settings.Log.Level, "log level")
	showVersion := flag.Bool("v", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	dlog.Configure(dlog.Config{Level: *logLevel, Service: "doctor-agent"})
	logger := dlog.WithComponent("agent")

	if *controller == "" {
		logger.Fatal().Msg("controller base URL is required")
	}

	client, err := buildHTTPClient(*caFile, *clientCert, *clientKey, *insecure)
	if err != nil {
		logger.Fatal().Err(err).Msg("http client build failed")
	}

	var cache *agent.Cache
	if *cachePath != "" {
		cache, err = agent.OpenCache(*cachePath)
		if err != nil {
			logger.Warn().Err(err).Str("path", *cachePath).Msg("snapshot cache disabled")
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	reporter := agent.NewReporter(*controller, *host, inspect.NewFileSource(*snapshots), cache)
	reporter.Client = client
	reporter.Log = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str(dlog.FieldHost, *host).
		Str("controller", *controller).
		Dur("interval", *interval).
		Str("version", version.String()).
		Msg("agent started")
	if err := reporter.Run(ctx, *interval); err != nil {
		logger.Error().Err(err).Msg("report failed")
		stop()
		os.Exit(1)
	}
}

func buildHTTPClient(caFile, certFile, keyFile string, insecure bool) (*http.Client, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: insecure} //nolint:gosec
	if caFile != "" {
		caCertPool := x509.NewCertPool()
		caData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		caCertPool.AppendCertsFromPEM(caData)
		tlsConfig.RootCAs = caCertPool
	}
	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}, nil
}
