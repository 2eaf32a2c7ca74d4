package version

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fleetward/osrecon/internal/model"
)

// Set through ldflags at build time.
var (
	AppVersion = "devel"
	GitCommit  = "unknown"
	BuildDate  = "unknown"

	GoVersion = runtime.Version()
)

type Version struct {
	AppVersion string
	GitCommit  string
	BuildDate  string
	GoVersion  string
}

func Current() *Version {
	return &Version{
		AppVersion: AppVersion,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  GoVersion,
	}
}

func (v *Version) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"appVersion": v.AppVersion,
		"gitCommit":  v.GitCommit,
		"buildDate":  v.BuildDate,
		"goVersion":  v.GoVersion,
	}
}

// ExportBuildInfoMetric exposes the build information as a constant
// gauge.
func ExportBuildInfoMetric() {
	gauge := promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: model.AppName,
			Name:      "build_info",
			Help:      "Build information.",
		},
		[]string{"version", "commit", "date", "go"},
	)

	gauge.With(prometheus.Labels{
		"version": AppVersion,
		"commit":  GitCommit,
		"date":    BuildDate,
		"go":      GoVersion,
	}).Set(1)
}
