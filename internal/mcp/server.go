package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	serverName            = "portfolio-advisor-mcp"
	serverVersion         = "1.1.0"
	defaultRequestTimeout = 5 * time.Second
	serverInstructions    = "Walk an investor through the questionnaire with questionnaire_get, " +
		"score answers with profile_build and preview the split with allocation_compute. " +
		"Stored portfolios are read with portfolio_get or portfolio://{id}. " +
		"Use etfs_list and etfs_compare for catalog lookups. Output is educational, not financial advice."
)

type ServerConfig struct {
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func (c ServerConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// NewServer builds the MCP server with every tool and resource registered.
// A nil tracer disables spans; requests are still bounded and logged.
func NewServer(tracer trace.Tracer, portfolios PortfolioReader, etfs ETFCatalog, cfg ServerConfig) *sdkmcp.Server {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	logger := cfg.logger()

	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})
	srv.AddReceivingMiddleware(observeMiddleware(tracer, logger, timeout))

	registerTools(srv, portfolios, etfs)
	registerResources(srv, portfolios, etfs)
	return srv
}

func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPHandlerConfig) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{})
	return wrapHTTPHandler(base, cfg)
}

// requestTarget names the tool or resource a request addresses, if any.
func requestTarget(req sdkmcp.Request) (kind, name string) {
	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		return "tool", strings.TrimSpace(r.Params.Name)
	case *sdkmcp.ReadResourceRequest:
		return "resource", strings.TrimSpace(r.Params.URI)
	}
	return "", ""
}

func spanName(method string, req sdkmcp.Request) string {
	kind, name := requestTarget(req)
	switch {
	case kind == "tool" && name != "":
		return "mcp.tool." + strings.ReplaceAll(name, "/", ".")
	case kind == "tool":
		return "mcp.tool.call"
	case kind == "resource":
		return "mcp.resource.read"
	}
	return "mcp." + strings.ReplaceAll(method, "/", ".")
}

// observeMiddleware bounds each request by timeout, wraps it in a span when a
// tracer is set and logs failures, including tools that answer with IsError.
func observeMiddleware(tracer trace.Tracer, logger *slog.Logger, timeout time.Duration) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			kind, name := requestTarget(req)
			var span trace.Span
			if tracer != nil {
				ctx, span = tracer.Start(ctx, spanName(method, req))
				span.SetAttributes(attribute.String("mcp.method", method))
				if kind != "" {
					span.SetAttributes(attribute.String("mcp."+kind, name))
				}
				defer span.End()
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			toolFailed := false
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				toolFailed = true
			}

			if span != nil {
				switch {
				case err != nil:
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				case toolFailed:
					span.SetStatus(codes.Error, "tool returned an error result")
				}
			}
			if err != nil || toolFailed {
				logger.WarnContext(ctx, "mcp request failed",
					slog.String("method", method),
					slog.String("target", name),
					slog.Duration("elapsed", time.Since(start)),
					slog.Any("error", err),
				)
			}
			return result, err
		}
	}
}
