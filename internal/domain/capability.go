package domain

// Meta key names understood by the embedding runtime. Opaque to the
// conversational host; it forwards them with the rendered widget.
const (
	MetaOutputTemplate = "openai/outputTemplate"
	MetaWidgetCSP      = "openai/widgetCSP"
	MetaWidgetDomain   = "openai/widgetDomain"
	MetaPrefersBorder  = "openai/widgetPrefersBorder"
	MetaClassification = "widgetd/classification"
	MetaWidgetData     = "widgetd/widgetData"
)

// CapabilityDescriptor is the static rendering contract for the widget:
// where it may fetch from, where it is hosted, and how it prefers to be
// framed. Loaded once at process start and constant thereafter.
type CapabilityDescriptor struct {
	ConnectDomains  []string
	ResourceDomains []string
	// FrameDomains stays empty: nested framing is not permitted.
	FrameDomains   []string
	WidgetDomain   string
	PrefersBorder  bool
	OutputTemplate string
}

// Meta encodes the descriptor as resource/tool metadata.
func (c CapabilityDescriptor) Meta() map[string]any {
	csp := map[string]any{
		"connect_domains":  emptyIfNil(c.ConnectDomains),
		"resource_domains": emptyIfNil(c.ResourceDomains),
		"frame_domains":    emptyIfNil(c.FrameDomains),
	}
	return map[string]any{
		MetaOutputTemplate: c.OutputTemplate,
		MetaWidgetCSP:      csp,
		MetaWidgetDomain:   c.WidgetDomain,
		MetaPrefersBorder:  c.PrefersBorder,
	}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
