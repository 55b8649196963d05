// Package server is the protocol façade: it wires the catalog,
// validator, executor, artifact mapper and bundle cache behind the MCP
// tool and resource surface. One ProtocolServer owns one editing
// session.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"widgetd/internal/domain"
	"widgetd/internal/infra/artifact"
	"widgetd/internal/infra/catalog"
	"widgetd/internal/infra/executor"
	"widgetd/internal/infra/telemetry"
	"widgetd/internal/infra/validate"
	"widgetd/internal/infra/widget"
)

const serverVersion = "0.3.0"

// WidgetInfo names the single resource this server exposes.
type WidgetInfo struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

func DefaultWidgetInfo() WidgetInfo {
	return WidgetInfo{
		URI:         domain.WidgetURI,
		Name:        domain.WidgetName,
		Description: domain.WidgetDescription,
		MIMEType:    domain.WidgetMIMEType,
	}
}

type Options struct {
	Catalog    *catalog.Catalog
	Session    *domain.SessionState
	Executor   *executor.Executor
	Bundle     *widget.BundleCache
	Widget     WidgetInfo
	Capability domain.CapabilityDescriptor
	Metrics    *telemetry.Metrics
	Logger     *zap.Logger
}

type ProtocolServer struct {
	logger     *zap.Logger
	catalog    *catalog.Catalog
	validator  *validate.Validator
	executor   *executor.Executor
	mapper     *artifact.Mapper
	bundle     *widget.BundleCache
	widget     WidgetInfo
	capability domain.CapabilityDescriptor
	metrics    *telemetry.Metrics
	session    *domain.SessionState

	// callMu serializes invocations and resource reads for this
	// session: each runs to completion before the next is admitted.
	callMu sync.Mutex

	mcp *mcp.Server
}

// New wires a ProtocolServer and runs the startup completeness checks:
// every catalog tool must have an executor handler and an artifact
// binding, and every schema must resolve. Failures here are fatal
// configuration errors, not runtime errors.
func New(opts Options) (*ProtocolServer, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if opts.Bundle == nil {
		return nil, fmt.Errorf("bundle cache is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Widget.URI == "" {
		opts.Widget = DefaultWidgetInfo()
	}

	validator, err := validate.NewValidator(opts.Catalog.Definitions()...)
	if err != nil {
		return nil, err
	}
	mapper, err := artifact.NewMapper(opts.Catalog)
	if err != nil {
		return nil, err
	}
	for _, name := range opts.Catalog.Names() {
		if !opts.Executor.Covers(name) {
			return nil, fmt.Errorf("tool %q has no executor handler", name)
		}
	}

	s := &ProtocolServer{
		logger:     logger.Named("protocol_server"),
		catalog:    opts.Catalog,
		validator:  validator,
		executor:   opts.Executor,
		mapper:     mapper,
		bundle:     opts.Bundle,
		widget:     opts.Widget,
		capability: opts.Capability,
		metrics:    opts.Metrics,
		session:    opts.Session,
	}
	s.mcp = s.buildMCPServer()
	return s, nil
}

// SessionID identifies the editing session this server owns.
func (s *ProtocolServer) SessionID() string {
	return s.session.SessionID()
}

// MCPServer exposes the wired MCP server for transports.
func (s *ProtocolServer) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves MCP over the given transport until ctx ends.
func (s *ProtocolServer) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("protocol server starting",
		zap.String("session", s.session.SessionID()),
		zap.Int("tools", s.catalog.Len()),
	)
	return s.mcp.Run(ctx, transport)
}

func (s *ProtocolServer) buildMCPServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "widgetd",
		Version: serverVersion,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
	})

	for _, def := range s.catalog.Definitions() {
		tool := &mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
			Meta: mcp.Meta{
				domain.MetaClassification: string(def.Classification),
			},
		}
		srv.AddTool(tool, s.toolHandler(def.Name))
	}

	resource := &mcp.Resource{
		URI:         s.widget.URI,
		Name:        s.widget.Name,
		Description: s.widget.Description,
		MIMEType:    s.widget.MIMEType,
		Meta:        mcp.Meta(s.capability.Meta()),
	}
	srv.AddResource(resource, s.resourceHandler())

	return srv
}

// Invoke runs the full pipeline for one invocation: validate, execute,
// map. It is the single entry point for tool calls regardless of
// transport. Unknown names fail with NOT_FOUND and leave the session
// untouched.
func (s *ProtocolServer) Invoke(ctx context.Context, name string, raw json.RawMessage) (domain.ToolResult, domain.Artifact) {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	ctx, meta := telemetry.EnsureRequestMeta(ctx, s.session.SessionID())
	fields := telemetry.RequestFields(meta)
	started := time.Now()

	def, ok := s.catalog.Lookup(name)
	if !ok {
		s.logger.Warn("unknown tool invoked", append(fields, zap.String("tool", name))...)
		s.metrics.ObserveToolCall(name, time.Since(started), true)
		return domain.Fail(domain.CodeNotFound, fmt.Sprintf("tool %q is not registered", name)), domain.NoArtifact()
	}

	args, violations := s.validator.Validate(def, raw)
	if len(violations) > 0 {
		s.logger.Info("invocation rejected",
			append(fields,
				zap.String("tool", name),
				zap.Any("violations", violations),
			)...)
		s.metrics.ObserveToolCall(name, time.Since(started), true)
		return domain.Fail(domain.CodeInvalidArgument, violationMessage(violations)), domain.NoArtifact()
	}

	result := s.executor.Execute(ctx, def, args, s.session)
	art := s.mapper.Map(name, result)

	s.metrics.ObserveToolCall(name, time.Since(started), result.Failed())
	if result.Failed() {
		s.logger.Info("tool call failed",
			append(fields,
				zap.String("tool", name),
				zap.String("kind", string(result.Failure.Kind)),
			)...)
	} else {
		s.logger.Debug("tool call completed",
			append(fields,
				zap.String("tool", name),
				zap.String("artifact", string(art.Kind)),
				zap.Int64("revision", s.session.Revision()),
			)...)
	}
	return result, art
}

func violationMessage(violations []validate.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Path != "" {
			parts = append(parts, v.Path+": "+v.Message)
			continue
		}
		parts = append(parts, v.Message)
	}
	return strings.Join(parts, "; ")
}

func (s *ProtocolServer) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = json.RawMessage(req.Params.Arguments)
		}

		result, art := s.Invoke(ctx, name, raw)
		if result.Failed() {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: result.Failure.Message},
				},
				StructuredContent: map[string]any{
					"kind":    string(result.Failure.Kind),
					"message": result.Failure.Message,
				},
			}, nil
		}

		out := &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%s completed", name)},
			},
			StructuredContent: result.Data,
		}
		if art.Kind.Renderable() {
			meta := s.capability.Meta()
			meta[domain.MetaWidgetData] = map[string]any{
				"template": string(art.Kind),
				"data":     art.Data,
			}
			out.Meta = mcp.Meta(meta)
		}
		return out, nil
	}
}

// ReadResource serves the widget bundle for the registered URI and
// NOT_FOUND for anything else. The bundle text is identical across
// reads; capability metadata rides along for the embedding runtime.
func (s *ProtocolServer) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	_, meta := telemetry.EnsureRequestMeta(ctx, s.session.SessionID())
	fields := telemetry.RequestFields(meta)

	if uri != s.widget.URI {
		err := domain.E(domain.CodeNotFound, "server.read_resource",
			fmt.Sprintf("resource %q is not registered", uri), domain.ErrResourceNotFound)
		s.logger.Warn("unknown resource read", append(fields, zap.String("uri", uri))...)
		s.metrics.ObserveResourceRead(err)
		return nil, err
	}

	text := s.bundle.GetBundle()
	s.metrics.ObserveResourceRead(nil)
	if s.bundle.Degraded() {
		s.metrics.ObserveBundleFallback()
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      s.widget.URI,
			MIMEType: s.widget.MIMEType,
			Text:     text,
			Meta:     mcp.Meta(s.capability.Meta()),
		}},
	}, nil
}

func (s *ProtocolServer) resourceHandler() mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := s.widget.URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return s.ReadResource(ctx, uri)
	}
}

// RenderWidget materializes final HTML for an artifact: the cached
// bundle plus one injected bootstrap assignment. Used when the
// embedding process asks the server to pre-inject rather than fetching
// the resource and injecting host-side.
func (s *ProtocolServer) RenderWidget(art domain.Artifact) (string, error) {
	if !art.Kind.Renderable() {
		return "", domain.E(domain.CodeInvalidArgument, "server.render_widget",
			fmt.Sprintf("artifact kind %q does not render", art.Kind), nil)
	}
	return s.bundle.InjectData(string(art.Kind), art.Data)
}
