package options

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestValidateAPIConfig(t *testing.T) {
	require.Equal(t, []string{"API configuration is required"}, ValidateAPIConfig(nil))
	require.Equal(t, []string{"API URL is required"}, ValidateAPIConfig(&model.APIConfig{}))
	require.Equal(t, []string{"Invalid API URL format", "Invalid HTTP method"},
		ValidateAPIConfig(&model.APIConfig{URL: "not a url", Method: "PATCH"}))
	require.Empty(t, ValidateAPIConfig(&model.APIConfig{URL: "https://example.com/items", Method: "DELETE"}))
	require.Empty(t, ValidateAPIConfig(&model.APIConfig{URL: "https://example.com/items", Method: " post "}))

	problems := ValidateAPIConfig(&model.APIConfig{URL: "https://example.com", Transform: "filter: a = 1"})
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "Invalid transform")
}
