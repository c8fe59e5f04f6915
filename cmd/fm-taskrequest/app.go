package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/fm-taskrequest/modules/facility/infrastructure/arxsapi"
	"github.com/iota-uz/fm-taskrequest/modules/facility/services"
	"github.com/iota-uz/fm-taskrequest/pkg/configuration"
	"github.com/iota-uz/fm-taskrequest/pkg/logging"
	"github.com/iota-uz/fm-taskrequest/pkg/metrics"
)

// app carries what one command invocation needs to talk to the platform.
type app struct {
	conf   *configuration.Configuration
	log    *logrus.Logger
	client *arxsapi.Client

	shutdown func()
}

func loadConfig(cmd *cobra.Command) (*configuration.Configuration, error) {
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	conf, err := configuration.Load(files)
	if err != nil {
		return nil, withCode(exitUsage, errors.Wrap(err, "load configuration"))
	}
	return conf, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*app, error) {
		conf.Unload()
		return nil, withCode(exitUsage, err)
	}

	if err := conf.Arxs.Validate(); err != nil {
		return fail(errors.Wrap(err, "configuration"))
	}
	client, err := arxsapi.New(arxsapi.Options{
		IdentityURL:     conf.Arxs.IdentityURL,
		BaseURL:         conf.Arxs.BaseURL,
		APIKey:          conf.Arxs.APIKey,
		TenantID:        conf.Arxs.TenantID,
		RequestTimeout:  conf.Arxs.RequestTimeout,
		RequestIDHeader: conf.RequestIDHeader,
		BlobVersion:     conf.Arxs.BlobVersion,
		Logger:          conf.Logger(),
	})
	if err != nil {
		return fail(err)
	}

	shutdown := func() {}
	if conf.OpenTelemetry.Enabled {
		shutdown = logging.SetupTracing(cmd.Context(), conf.Logger(), conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.TempoURL)
	}

	return &app{
		conf:     conf,
		log:      conf.Logger(),
		client:   client,
		shutdown: shutdown,
	}, nil
}

func (a *app) connector() services.Connector {
	return services.ConnectorFunc(func(ctx context.Context) (services.Platform, error) {
		session, err := a.client.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}

// Close flushes traces, writes the metrics textfile when configured and
// releases the log file.
func (a *app) Close() {
	a.shutdown()
	if path := a.conf.Prometheus.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path, nil); err != nil {
			a.log.WithError(err).Warn("failed to write metrics textfile")
		}
	}
	a.conf.Unload()
}
