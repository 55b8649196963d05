package artifact

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/require"

	"widgetd/internal/domain"
	"widgetd/internal/infra/catalog"
)

func TestNewMapper_TotalOverCatalog(t *testing.T) {
	cat := catalog.Default()
	m, err := NewMapper(cat)
	require.NoError(t, err)

	for _, name := range cat.Names() {
		kind, ok := m.Kind(name)
		require.True(t, ok, "tool %s has no artifact mapping", name)
		require.True(t, kind.Valid())
	}
}

func TestNewMapper_MissingBindingFailsStartup(t *testing.T) {
	cat := catalog.MustNew(domain.ToolDefinition{
		Name:           "unbound_tool",
		InputSchema:    defaultSchema(t),
		Classification: domain.ClassFastTurn,
	})
	_, err := NewMapper(cat)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unbound_tool")
}

func defaultSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	def, ok := catalog.Default().Lookup(catalog.ToolGetProjectDraft)
	require.True(t, ok)
	return def.InputSchema
}

func TestMap_SuccessYieldsBoundKind(t *testing.T) {
	m, err := NewMapper(catalog.Default())
	require.NoError(t, err)

	res := domain.Succeed(map[string]any{"title": "New Title", "revision": int64(5)})
	art := m.Map(catalog.ToolUpdateProjectTitle, res)
	require.Equal(t, domain.ArtifactProjectDraft, art.Kind)
	require.Equal(t, "New Title", art.Data["title"])

	// Same input, same output.
	again := m.Map(catalog.ToolUpdateProjectTitle, res)
	require.Equal(t, art, again)
}

func TestMap_FailureYieldsNoArtifact(t *testing.T) {
	m, err := NewMapper(catalog.Default())
	require.NoError(t, err)

	art := m.Map(catalog.ToolUpdateProjectTitle, domain.Fail(domain.CodeFailedPrecond, "nope"))
	require.Equal(t, domain.ArtifactNone, art.Kind)
	require.Nil(t, art.Data)
}

func TestMap_SideEffectOnlyToolYieldsNoArtifact(t *testing.T) {
	m, err := NewMapper(catalog.Default())
	require.NoError(t, err)

	art := m.Map(catalog.ToolRecordEditNote, domain.Succeed(map[string]any{"recorded": true}))
	require.Equal(t, domain.ArtifactNone, art.Kind)
}
