package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"widgetd/internal/domain"
	"widgetd/internal/infra/catalog"
	"widgetd/internal/infra/executor"
	"widgetd/internal/infra/widget"
)

const testBundle = `<!doctype html>
<html>
<head><title>app-widget</title></head>
<body><div id="root"></div></body>
</html>
`

func newTestServer(t *testing.T, sess *domain.SessionState) *ProtocolServer {
	t.Helper()

	bundlePath := filepath.Join(t.TempDir(), "widget.html")
	require.NoError(t, os.WriteFile(bundlePath, []byte(testBundle), 0o644))

	s, err := New(Options{
		Catalog:  catalog.Default(),
		Session:  sess,
		Executor: executor.NewExecutor(nil, zap.NewNop()),
		Bundle:   widget.NewBundleCache(bundlePath, zap.NewNop()),
		Capability: domain.CapabilityDescriptor{
			ConnectDomains: []string{"https://api.knearme.example"},
			WidgetDomain:   "https://widgets.knearme.example",
			PrefersBorder:  true,
			OutputTemplate: domain.WidgetURI,
		},
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return s
}

func TestInvoke_UnknownToolIsNotFoundAndStateUntouched(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)
	before := sess.Snapshot()

	result, art := s.Invoke(context.Background(), "delete_everything", nil)
	require.True(t, result.Failed())
	require.Equal(t, domain.CodeNotFound, result.Failure.Kind)
	require.Equal(t, domain.ArtifactNone, art.Kind)

	after := sess.Snapshot()
	require.Equal(t, before.Revision, after.Revision)
	require.Equal(t, before.Project, after.Project)
}

func TestInvoke_UpdateTitleAtRevisionFour(t *testing.T) {
	sess := domain.NewSessionStateAt("sess-1", domain.Project{Status: domain.StatusDraft}, 4)
	s := newTestServer(t, sess)

	result, art := s.Invoke(context.Background(), catalog.ToolUpdateProjectTitle,
		json.RawMessage(`{"title":"New Title"}`))
	require.False(t, result.Failed())
	require.EqualValues(t, 5, sess.Revision())
	require.Equal(t, domain.ArtifactProjectDraft, art.Kind)
	require.Equal(t, "New Title", art.Data["title"])
}

func TestInvoke_ValidationRejectionLeavesStateBitIdentical(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.Project{Title: "Keep", Status: domain.StatusDraft})
	s := newTestServer(t, sess)
	before := sess.Snapshot()

	result, art := s.Invoke(context.Background(), catalog.ToolUpdateProjectTitle,
		json.RawMessage(`{"title":""}`))
	require.True(t, result.Failed())
	require.Equal(t, domain.CodeInvalidArgument, result.Failure.Kind)
	require.Equal(t, domain.ArtifactNone, art.Kind)

	after := sess.Snapshot()
	require.Equal(t, before.Revision, after.Revision)
	require.Equal(t, before.Project, after.Project)
}

func TestInvoke_SideEffectToolCarriesNoArtifact(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)

	result, art := s.Invoke(context.Background(), catalog.ToolRecordEditNote,
		json.RawMessage(`{"note":"call the client back"}`))
	require.False(t, result.Failed())
	require.Equal(t, domain.ArtifactNone, art.Kind)
}

func TestReadResource_UnknownURIIsNotFound(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)

	_, err := s.ReadResource(context.Background(), "template://unknown")
	require.Error(t, err)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeNotFound, code)
}

func TestReadResource_BundleStableAcrossReads(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)

	first, err := s.ReadResource(context.Background(), domain.WidgetURI)
	require.NoError(t, err)
	second, err := s.ReadResource(context.Background(), domain.WidgetURI)
	require.NoError(t, err)

	require.Len(t, first.Contents, 1)
	require.Equal(t, testBundle, first.Contents[0].Text)
	require.Equal(t, first.Contents[0].Text, second.Contents[0].Text)
	require.Equal(t, domain.WidgetMIMEType, first.Contents[0].MIMEType)
	require.Equal(t, domain.WidgetURI, first.Contents[0].URI)
}

func TestMCPRoundTrip_ToolCallCarriesWidgetMeta(t *testing.T) {
	ctx := context.Background()
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)

	ct, st := mcp.NewInMemoryTransports()
	_, err := s.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 9)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      catalog.ToolUpdateProjectTitle,
		Arguments: json.RawMessage(`{"title":"Garage Conversion"}`),
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, res.Meta, domain.MetaOutputTemplate)
	require.Contains(t, res.Meta, domain.MetaWidgetData)

	resources, err := session.ListResources(ctx, &mcp.ListResourcesParams{})
	require.NoError(t, err)
	require.Len(t, resources.Resources, 1)
	require.Equal(t, domain.WidgetURI, resources.Resources[0].URI)

	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: domain.WidgetURI})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	require.Equal(t, testBundle, read.Contents[0].Text)
}

func TestRenderWidget_InjectsArtifactData(t *testing.T) {
	sess := domain.NewSessionState("sess-1", domain.NewProject())
	s := newTestServer(t, sess)

	_, art := s.Invoke(context.Background(), catalog.ToolUpdateProjectTitle,
		json.RawMessage(`{"title":"Sunroom"}`))
	require.Equal(t, domain.ArtifactProjectDraft, art.Kind)

	html, err := s.RenderWidget(art)
	require.NoError(t, err)
	require.Contains(t, html, `"template":"project-draft"`)
	require.Contains(t, html, `"title":"Sunroom"`)

	_, err = s.RenderWidget(domain.NoArtifact())
	require.Error(t, err)
}

func TestNew_RequiresWiring(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
