package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instance-doctor/pkg/api"
	"instance-doctor/pkg/config"
	"instance-doctor/pkg/db"
	"instance-doctor/pkg/diag"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/metrics"
	"instance-doctor/pkg/store"
	"instance-doctor/pkg/version"
)

func main() {
	settings, err := config.Load(os.Getenv("DOCTOR_CONFIG"))
	if err != nil {
		base := dlog.Base()
		base.Fatal().Err(err).Msg("load config")
	}

	addr := flag.String("addr", config.Getenv("DOCTOR_ADDR", ":8080"), "listen address")
	storeType := flag.String("store", settings.Store.Backend, "store backend: memory|consul|mysql")
	consulAddr := flag.String("consul-addr", settings.Store.ConsulAddr, "consul address (when store=consul)")
	mysqlDSN := flag.String("mysql-dsn", settings.Store.MySQLDSN, "mysql dsn (when store=mysql; empty uses MYSQL_* env)")
	tlsCert := flag.String("tls-cert", "", "TLS cert path (enables HTTPS if set with --tls-key)")
	tlsKey := flag.String("tls-key", "", "TLS key path (enables HTTPS if set with --tls-cert)")
	clientCA := flag.String("client-ca", "", "require and verify client certs using this CA (optional)")
	logLevel := flag.String("log-level", settings.Log.Level, "log level")
	flag.Parse()

	dlog.Configure(dlog.Config{Level: *logLevel, Service: "doctor-controller"})
	logger := dlog.WithComponent("controller")
	api.SetLogger(logger)

	var reportStore store.ReportStore
	switch *storeType {
	case config.BackendConsul:
		reportStore, err = store.NewConsulStore(*consulAddr)
	case config.BackendMySQL:
		reportStore, err = db.NewStore(*mysqlDSN)
	case config.BackendMemory:
		reportStore = store.NewMemoryStore()
	default:
		logger.Fatal().Str(dlog.FieldBackend, *storeType).Msg("unsupported store type")
	}
	if err != nil {
		logger.Fatal().Err(err).Str(dlog.FieldBackend, *storeType).Msg("store init failed")
	}

	engine := diag.NewEngine(diag.WithObserver(metrics.Recorder{}))
	hub := api.NewReportHub()
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, engine, reportStore, hub)

	var tlsCfg *tls.Config
	if *tlsCert != "" && *tlsKey != "" {
		tlsCfg, err = api.ServerTLSConfig(*tlsCert, *tlsKey, *clientCA)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build TLS config")
		}
	}
	srv := api.NewServer(*addr, mux, tlsCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", *addr).
		Str(dlog.FieldBackend, *storeType).
		Bool("tls", tlsCfg != nil).
		Str("version", version.String()).
		Msg("controller listening")
	if tlsCfg != nil {
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
}
