package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"fb-s2s/cmd/api/s2s-api/app"
	"fb-s2s/pkg/config"
	"fb-s2s/pkg/logger"
	"fb-s2s/pkg/tracing"
	"fb-s2s/pkg/utils"
)

var version string

func main() {
	configFile := flag.String("config", "", "config file, defaults to conf.toml in ./conf or .")
	loggerType := flag.String("logger-type", "default", "logger type: default (stdout) or file")
	loggerDev := flag.Bool("logger-dev", false, "use the development logger")
	flag.Parse()

	if err := initConfig(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	initLogger(*loggerType, *loggerDev)
	defer logger.BkLog.Close()

	logger.BkLog.Infof("%v %v. Starting...", app.ServiceName, version)

	tracingShutdown, err := tracing.Setup(context.Background(), tracing.ConfigFromViper(app.ServiceName))
	if err != nil {
		logger.BkLog.Fatalf("Could not set up tracing: %v", err)
	}

	sender, err := app.NewSenderFromConfig()
	if err != nil {
		logger.BkLog.Fatalf("Invalid configuration: %v", err)
	}

	hs := &http.Server{
		Addr:         fmt.Sprintf("%v:%v", viper.GetString("server.host"), utils.ViperGetIntWithDefault("server.port", 8080)),
		Handler:      app.NewHandler(sender),
		IdleTimeout:  70 * time.Second,
		ReadTimeout:  40 * time.Second,
		WriteTimeout: 70 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.BkLog.Infof("%v. Stopping...", app.ServiceName)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			logger.BkLog.Errorf("An error occurred when http server is being shutdown, details: %v", err)
		}
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.BkLog.Errorf("Could not flush traces: %v", err)
		}
	}()

	logger.BkLog.Infof("Starting HTTP service %v at %v", app.ServiceName, hs.Addr)
	if err := hs.ListenAndServe(); err != nil {
		if err == http.ErrServerClosed {
			logger.BkLog.Info(http.ErrServerClosed.Error())
		} else {
			logger.BkLog.Errorf("HTTP server closed with error: %v", err)
		}
	}
}

func initConfig(configFile string) error {
	if configFile != "" {
		return config.ReadBkConfigByFile(configFile)
	}
	return config.ReadBkConfig("conf", "./conf", ".")
}

func initLogger(loggerType string, dev bool) {
	switch loggerType {
	case "file":
		logger.InitLoggerFile(logger.FileConfig{
			OutputPath:  utils.ViperGetStringWithDefault("logger.output_path", "./log/app.log"),
			MaxSizeInMB: utils.ViperGetIntWithDefault("logger.max_size_in_mb", 10),
			MaxBackups:  utils.ViperGetIntWithDefault("logger.max_backups", 10),
			MaxAge:      utils.ViperGetIntWithDefault("logger.max_age", 30),
			Dev:         dev,
		})
	default:
		if dev {
			logger.InitLoggerDefaultDev()
		} else {
			logger.InitLoggerDefault()
		}
	}

	if level := viper.GetString("logger.level"); level != "" {
		if err := logger.BkLog.SetLevel(level); err != nil {
			logger.BkLog.Warnf("Invalid logger.level %v: %v", level, err)
		}
	}
	logger.BkLog.Info("Logger loaded")
}
