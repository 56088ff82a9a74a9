package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orrery/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
)

// registerLogHooks routes pipeline and cache events to l.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, bodies int) {
	h.logger.Debug("building forest", "bodies", bodies)
}

func (h logHooks) OnBuildComplete(_ context.Context, nodes, roots int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "err", err, "duration", d)
		return
	}
	h.logger.Debug("built forest", "nodes", nodes, "roots", roots, "duration", d)
}

func (h logHooks) OnLayoutStart(_ context.Context, mode string, nodes int) {
	h.logger.Debug("placing bodies", "mode", mode, "nodes", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, mode string, d time.Duration, err error) {
	h.logger.Debug("placed bodies", "mode", mode, "duration", d, "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("rendering", "format", format)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("rendered", "format", format, "duration", d, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
