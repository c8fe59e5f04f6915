// Package metrics exports the process metrics of a one-shot run.
package metrics

import (
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes everything registered with g to path in the text
// exposition format, for pickup by the node exporter textfile collector.
// A nil g means the default registry.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}
