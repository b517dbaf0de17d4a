package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording progress metrics", func() {
			Convey("Then it should record updates and creates", func() {
				So(func() {
					RecordProgressUpdated()
					RecordProgressUpdated()
					RecordProgressCreated()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording ranking metrics", func() {
			Convey("Then it should record queries and latency", func() {
				So(func() {
					RecordRankingQuery("subject")
					RecordRankingQuery("global")
					RecordRankingQueryLatency("subject", 12.5)
					RecordRankingQueryLatency("global", 30.0)
				}, ShouldNotPanic)
			})

			Convey("And it should record directory lookup misses", func() {
				So(func() {
					RecordDirectoryLookupMiss("user")
					RecordDirectoryLookupMiss("subject")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording repository metrics", func() {
			Convey("Then it should update gauges", func() {
				So(func() {
					UpdateRepositoryShardCount(16)
					UpdateRepositoryRecordsTotal(1000)
					UpdateRepositoryRecordsPerShard("0", 62)
					UpdateRepositoryRecordsPerShard("15", 63)
				}, ShouldNotPanic)
			})

			Convey("And it should record latencies", func() {
				So(func() {
					RecordRepositoryUpdateLatency(1.5)
					RecordRepositoryQueryLatency(0.8)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("progress", "POST", "200")
					RecordHTTPRequestDuration("progress", "POST", "200", 4.2)
					RecordHTTPRequest("leaderboard", "GET", "400")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors", func() {
				So(func() {
					RecordErrorByComponent("repository", "storage")
					RecordErrorByEndpoint("leaderboard", "GET", "client_error")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When fetched", func() {
			registry := GetRegistry()

			Convey("Then it should be non-nil and gatherable", func() {
				So(registry, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
