package options

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transform"
)

// ValidateAPIConfig lists the problems that would prevent a request from
// being attempted. An empty result means the config is usable.
func ValidateAPIConfig(cfg *model.APIConfig) []string {
	if cfg == nil {
		return []string{"API configuration is required"}
	}
	var problems []string
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		problems = append(problems, "API URL is required")
	} else if !validURL(raw) {
		problems = append(problems, "Invalid API URL format")
	}
	if method := normalizeMethod(cfg.Method); method != "" && !supportedMethod(method) {
		problems = append(problems, "Invalid HTTP method")
	}
	if strings.TrimSpace(cfg.Transform) != "" {
		if _, err := transform.Parse(cfg.Transform); err != nil {
			problems = append(problems, "Invalid transform: "+err.Error())
		}
	}
	return problems
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.Scheme != "" && (parsed.Host != "" || parsed.Opaque != "")
}
