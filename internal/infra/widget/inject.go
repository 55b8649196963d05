package widget

import (
	"encoding/json"
	"fmt"
	"strings"
)

// headCloseMarker is the insertion point contract: the bootstrap
// assignment lands immediately before it, exactly once.
const headCloseMarker = "</head>"

// bootstrapGlobal is the name the bundle reads its boot data from.
const bootstrapGlobal = "window.__WIDGET_BOOTSTRAP__"

type bootstrapPayload struct {
	Template string `json:"template"`
	Data     any    `json:"data"`
}

// InjectData returns a copy of the cached bundle with one bootstrap
// script inserted before the head-close marker. The cached original is
// never modified; two injections with different data start from the
// same pristine text.
func (c *BundleCache) InjectData(template string, data any) (string, error) {
	payload, err := json.Marshal(bootstrapPayload{Template: template, Data: data})
	if err != nil {
		return "", fmt.Errorf("encode widget bootstrap: %w", err)
	}

	// json.Marshal escapes <, > and & by default, so the payload can
	// never terminate the script element early.
	script := fmt.Sprintf("<script>%s = %s;</script>", bootstrapGlobal, payload)

	bundle := c.GetBundle()
	if !strings.Contains(bundle, headCloseMarker) {
		// Built bundles always carry a head; tolerate a stripped one
		// rather than dropping the data.
		return bundle + script, nil
	}
	return strings.Replace(bundle, headCloseMarker, script+headCloseMarker, 1), nil
}
