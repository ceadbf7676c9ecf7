package lint

import (
	"fmt"
	"strings"
)

// BuildDocURL constructs a documentation URL for a rule from its plugin's
// DocsBaseURL. Returns "" when the rule or its plugin is unknown or the plugin
// has no documentation site.
func BuildDocURL(ruleID string) string {
	pluginName, name, ok := strings.Cut(ruleID, "/")
	if !ok {
		return ""
	}
	p, found := GetPlugin(pluginName)
	if !found || p.DocsBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.md", strings.TrimSuffix(p.DocsBaseURL, "/"), name)
}
