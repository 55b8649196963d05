package widget

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"widgetd/internal/domain"
)

const testBundle = `<!doctype html>
<html>
<head><title>app-widget</title></head>
<body><div id="root"></div></body>
</html>
`

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget.html")
	require.NoError(t, os.WriteFile(path, []byte(testBundle), 0o644))
	return path
}

func TestGetBundle_ConcurrentCallersSingleLoad(t *testing.T) {
	cache := NewBundleCache(writeBundle(t), zap.NewNop())

	var loads atomic.Int32
	underlying := cache.readFile
	cache.readFile = func(path string) ([]byte, error) {
		loads.Add(1)
		return underlying(path)
	}

	const n = 16
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.GetBundle()
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, loads.Load())
	for _, text := range results {
		require.Equal(t, testBundle, text)
	}
}

func TestGetBundle_FailedLoadCachesFallbackWithoutRetry(t *testing.T) {
	cache := NewBundleCache(filepath.Join(t.TempDir(), "missing.html"), zap.NewNop())

	var loads atomic.Int32
	cache.readFile = func(string) ([]byte, error) {
		loads.Add(1)
		return nil, errors.New("no such file")
	}

	first := cache.GetBundle()
	second := cache.GetBundle()
	require.Equal(t, first, second)
	require.True(t, cache.Degraded())
	require.Contains(t, first, "</head>")
	require.EqualValues(t, 1, loads.Load(), "failed load must not retry")
}

func TestInjectData_TwoInjectionsAreIndependent(t *testing.T) {
	cache := NewBundleCache(writeBundle(t), zap.NewNop())

	one, err := cache.InjectData(domain.WidgetURI, map[string]any{"title": "A"})
	require.NoError(t, err)
	two, err := cache.InjectData(domain.WidgetURI, map[string]any{"title": "B"})
	require.NoError(t, err)

	require.NotEqual(t, one, two)
	for _, injected := range []string{one, two} {
		require.Equal(t, 1, strings.Count(injected, bootstrapGlobal))
		// Original content survives unchanged around the insertion.
		idx := strings.Index(injected, "<script>")
		end := strings.Index(injected, "</script>") + len("</script>")
		require.Equal(t, testBundle, injected[:idx]+injected[end:])
	}
	require.Contains(t, one, `"title":"A"`)
	require.Contains(t, two, `"title":"B"`)

	// A later GetBundle still sees the pristine text.
	require.Equal(t, testBundle, cache.GetBundle())
}

func TestInjectData_InsertsBeforeHeadClose(t *testing.T) {
	cache := NewBundleCache(writeBundle(t), zap.NewNop())

	injected, err := cache.InjectData(domain.WidgetURI, map[string]any{"revision": 5})
	require.NoError(t, err)

	scriptAt := strings.Index(injected, "<script>")
	headAt := strings.Index(injected, "</head>")
	require.GreaterOrEqual(t, headAt, 0)
	require.Less(t, scriptAt, headAt)
	require.Contains(t, injected, `"template":"`+domain.WidgetURI+`"`)
}

func TestInjectData_EscapesMarkup(t *testing.T) {
	cache := NewBundleCache(writeBundle(t), zap.NewNop())

	injected, err := cache.InjectData(domain.WidgetURI, map[string]any{
		"description": "</script><script>alert(1)</script>",
	})
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(injected, "<script>"))
	require.Equal(t, 1, strings.Count(injected, "</script>"))
}
