// Package widget serves the prebuilt UI bundle and injects
// per-invocation bootstrap data into it.
package widget

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// fallbackDocument is served when the bundle cannot be read from its
// build location. Resource reads degrade instead of failing.
const fallbackDocument = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Widget unavailable</title>
</head>
<body>
<p>The project widget could not be loaded. Please retry later.</p>
</body>
</html>
`

// BundleCache memoizes the on-disk UI bundle. The first caller performs
// the read; every caller, concurrent or later, observes the same text
// for the process lifetime. A failed read caches the fallback document
// and is logged once; there is no retry.
type BundleCache struct {
	path     string
	logger   *zap.Logger
	readFile func(string) ([]byte, error)

	once sync.Once
	text string
}

func NewBundleCache(path string, logger *zap.Logger) *BundleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleCache{
		path:     path,
		logger:   logger.Named("widget_cache"),
		readFile: os.ReadFile,
	}
}

// GetBundle returns the cached bundle text, loading it on first call.
func (c *BundleCache) GetBundle() string {
	c.once.Do(func() {
		raw, err := c.readFile(c.path)
		if err != nil {
			c.logger.Warn("widget bundle load failed, serving fallback",
				zap.String("path", c.path),
				zap.Error(err),
			)
			c.text = fallbackDocument
			return
		}
		c.logger.Info("widget bundle loaded",
			zap.String("path", c.path),
			zap.Int("bytes", len(raw)),
		)
		c.text = string(raw)
	})
	return c.text
}

// Degraded reports whether the cache is serving the fallback document.
func (c *BundleCache) Degraded() bool {
	return c.GetBundle() == fallbackDocument
}
