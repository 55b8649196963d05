package domain

// Widget resource identity. The URI doubles as the output-template
// identifier carried in capability metadata.
const (
	WidgetURI         = "template://app-widget"
	WidgetMIMEType    = "text/html+skybridge"
	WidgetName        = "app-widget"
	WidgetDescription = "Portfolio project editing widget"
)

// Defaults consumed by the config loader.
const (
	DefaultBundlePath                 = "web/dist/widget.html"
	DefaultStorePath                  = "data/projects.db"
	DefaultWidgetDomain               = "https://widgets.knearme.example"
	DefaultHTTPListenAddress          = "127.0.0.1:8091"
	DefaultHTTPPath                   = "/mcp"
	DefaultObservabilityListenAddress = "127.0.0.1:9094"
)
