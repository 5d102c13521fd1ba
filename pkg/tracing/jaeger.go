package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"github.com/pg-sharding/batchwrite/pkg/bwlog"
	"github.com/pg-sharding/batchwrite/pkg/config"
)

// zeroLogger routes jaeger client messages to the process logger.
type zeroLogger struct{}

func (zeroLogger) Error(msg string) {
	bwlog.Zero.Error().Str("component", "jaeger").Msg(msg)
}

func (zeroLogger) Infof(msg string, args ...interface{}) {
	bwlog.Zero.Debug().Str("component", "jaeger").Msg(fmt.Sprintf(msg, args...))
}

// InitJaegerTracer installs a global jaeger tracer. The returned closer
// flushes pending spans.
func InitJaegerTracer(cfg config.JaegerCfg) (io.Closer, error) {
	service := cfg.ServiceName
	if service == "" {
		service = "batchwrite"
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:              "const",
			Param:             1,
			SamplingServerURL: cfg.JaegerUrl,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans: false,
		},
		Gen128Bit: true,
		Tags: []opentracing.Tag{
			{Key: "span.kind", Value: "client"},
		},
	}

	return jcfg.InitGlobalTracer(
		service,
		jaegercfg.Logger(zeroLogger{}),
		jaegercfg.Metrics(metrics.NullFactory),
	)
}
