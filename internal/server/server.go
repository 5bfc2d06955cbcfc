package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/proc"
	"github.com/zeromicro/go-zero/core/prometheus"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/mcp"
	"github.com/zeromicro/go-zero/rest"

	"github.com/joeblew999/plat-mailfix/internal/config"
	"github.com/joeblew999/plat-mailfix/internal/errorx"
	"github.com/joeblew999/plat-mailfix/internal/handler"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/pkg/mjml"
)

// Server wraps the MCP server and the repair API.
type Server struct {
	config config.Config
	group  *service.ServiceGroup
}

// New creates a new server instance.
func New(c config.Config) (*Server, error) {
	// Register global error handler for proper HTTP status codes
	errorx.RegisterErrorHandler()

	// Enable go-zero prometheus metrics (required for metric.CounterVec/HistogramVec to record)
	prometheus.Enable()

	svcCtx := svc.NewServiceContext(c)

	mcpServer := mcp.NewMcpServer(c.McpConf)
	RegisterMCPTools(mcpServer, svcCtx)

	apiServer, err := rest.NewServer(c.API.RestConf, rest.WithCors("*"))
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}
	handler.RegisterHandlers(apiServer, svcCtx)

	// Expose Prometheus metrics endpoint
	apiServer.AddRoute(rest.Route{
		Method:  http.MethodGet,
		Path:    "/metrics",
		Handler: promhttp.Handler().ServeHTTP,
	})

	// gomjml keeps a process-wide AST cache with its own cleanup goroutine
	proc.AddShutdownListener(mjml.StopCache)

	// Stopped in reverse order
	group := service.NewServiceGroup()
	group.Add(apiServer)
	group.Add(mcpServer)

	logx.Infow("plat-mailfix server configured",
		logx.Field("mcp", fmt.Sprintf("http://%s:%d/sse", c.Host, c.Port)),
		logx.Field("api", fmt.Sprintf("http://%s:%d/api/v1", c.API.Host, c.API.Port)),
		logx.Field("checklist", c.Pipeline.Checklist),
		logx.Field("max_bytes", c.Limits.MaxBytes),
		logx.Field("rate_limit", c.Limits.RateLimit),
	)
	logx.Infof("To add to Claude: claude mcp add plat-mailfix -- npx -y mcp-remote http://localhost:%d/sse", c.Port)

	return &Server{config: c, group: group}, nil
}

// Start starts all services. Blocks until shutdown signal.
func (s *Server) Start() {
	s.group.Start()
}

// Stop stops all services.
func (s *Server) Stop() {
	s.group.Stop()
}
