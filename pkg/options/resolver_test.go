package options

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func newTestResolver(opts ...Option) *Resolver {
	return NewResolver(append([]Option{WithStaticDelay(0)}, opts...)...)
}

func TestResolve_StaticHonoursDelayAndContext(t *testing.T) {
	r := NewResolver(WithStaticDelay(20 * time.Millisecond))

	start := time.Now()
	items, err := r.Resolve(context.Background(), model.OptionSourceStatic, "A, B", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Resolve(ctx, model.OptionSourceStatic, "A", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve_ExternalWithDataPathAndFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "secret", r.Header.Get("X-Token"))
		require.Equal(t, "eu", r.URL.Query().Get("region"))
		_, _ = io.WriteString(w, `{"data":{"items":[{"code":"FR","name":"France"},{"code":"DE","name":""}]}}`)
	}))
	defer srv.Close()

	r := newTestResolver(WithHTTPClient(srv.Client()))
	items, err := r.Resolve(context.Background(), model.OptionSourceExternal, "", &model.APIConfig{
		URL:        srv.URL + "/countries",
		Headers:    map[string]string{"X-Token": "secret"},
		Params:     map[string]any{"region": "eu"},
		DataPath:   "data.items",
		ValueField: "code",
		LabelField: "name",
	})
	require.NoError(t, err)
	require.Equal(t, []model.OptionItem{
		{Value: "FR", Label: "France"},
		{Value: "DE", Label: `{"code":"DE","name":""}`},
	}, items)
}

func TestResolve_PostSendsParamsAsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "active", body["status"])
		_, _ = io.WriteString(w, `[{"value":"1","label":"One"}]`)
	}))
	defer srv.Close()

	r := newTestResolver(WithHTTPClient(srv.Client()))
	items, err := r.Resolve(context.Background(), model.OptionSourceExternal, "", &model.APIConfig{
		URL:    srv.URL,
		Method: "POST",
		Params: map[string]any{"status": "active"},
	})
	require.NoError(t, err)
	require.Equal(t, []model.OptionItem{{Value: "1", Label: "One"}}, items)
}

func TestResolve_InternalUsesBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/purposes", r.URL.Path)
		_, _ = io.WriteString(w, `["x","y"]`)
	}))
	defer srv.Close()

	r := newTestResolver(WithHTTPClient(srv.Client()), WithInternalBaseURL(srv.URL+"/api/"))
	items, err := r.Resolve(context.Background(), model.OptionSourceAPI, "", &model.APIConfig{URL: "/purposes"})
	require.NoError(t, err)
	require.Equal(t, []model.OptionItem{{Value: "x", Label: "x"}, {Value: "y", Label: "y"}}, items)
}

func TestResolve_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/object":
			_, _ = io.WriteString(w, `{"data":{"items":{}}}`)
		case "/garbage":
			_, _ = io.WriteString(w, `<html>`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	r := newTestResolver(WithHTTPClient(srv.Client()))
	cases := []struct {
		name string
		cfg  *model.APIConfig
		kind Kind
	}{
		{"not an array", &model.APIConfig{URL: srv.URL + "/object", DataPath: "data.items"}, KindNotArray},
		{"missing data path", &model.APIConfig{URL: srv.URL + "/object", DataPath: "data.nope"}, KindNotArray},
		{"invalid json", &model.APIConfig{URL: srv.URL + "/garbage"}, KindDecode},
		{"bad status", &model.APIConfig{URL: srv.URL + "/fail"}, KindStatus},
		{"bad method", &model.APIConfig{URL: srv.URL, Method: "PATCH"}, KindConfig},
		{"relative url", &model.APIConfig{URL: "/relative"}, KindConfig},
		{"unreachable", &model.APIConfig{URL: "http://127.0.0.1:1/"}, KindNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), model.OptionSourceExternal, "", tc.cfg)
			var resolveErr *Error
			require.True(t, errors.As(err, &resolveErr), "expected *Error, got %v", err)
			require.Equal(t, tc.kind, resolveErr.Kind)
			require.NotEmpty(t, resolveErr.Message)
		})
	}
}

func TestResolve_MissingURLAndUnknownSourceAreEmpty(t *testing.T) {
	r := newTestResolver()

	items, err := r.Resolve(context.Background(), model.OptionSourceExternal, "", nil)
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = r.Resolve(context.Background(), model.OptionSourceAPI, "", &model.APIConfig{URL: "  "})
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = r.Resolve(context.Background(), "carrier-pigeon", "A,B", nil)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestResolve_TransformAndDegradedTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"One","active":true},{"id":2,"name":"Two","active":false}]`)
	}))
	defer srv.Close()

	r := newTestResolver(WithHTTPClient(srv.Client()))
	items, err := r.Resolve(context.Background(), model.OptionSourceExternal, "", &model.APIConfig{
		URL:       srv.URL,
		Transform: "filter: active\nvalue: id\nlabel: name",
	})
	require.NoError(t, err)
	require.Equal(t, []model.OptionItem{{Value: "1", Label: "One"}}, items)

	items, err = r.Resolve(context.Background(), model.OptionSourceExternal, "", &model.APIConfig{
		URL:       srv.URL,
		Transform: "return data.map(x => x)",
	})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLoad_DeliversExactlyOnce(t *testing.T) {
	r := newTestResolver()
	ch := r.Load(context.Background(), model.OptionSourceStatic, "A,B", nil)

	outcome, ok := <-ch
	require.True(t, ok)
	require.NoError(t, outcome.Err)
	require.Len(t, outcome.Options, 2)

	_, ok = <-ch
	require.False(t, ok, "expected channel to be closed after one outcome")
}

func TestResolveField(t *testing.T) {
	r := newTestResolver()

	field := model.NewField("color", model.FieldTypeRadio)
	field.Attrs.(*model.ChoiceAttrs).Source = model.OptionConfig{Source: model.OptionSourceStatic, Static: "Red,Blue"}
	items, err := r.ResolveField(context.Background(), field)
	require.NoError(t, err)
	require.Equal(t, []model.OptionItem{{Value: "Red", Label: "Red"}, {Value: "Blue", Label: "Blue"}}, items)

	items, err = r.ResolveField(context.Background(), model.NewField("name", model.FieldTypeText))
	require.NoError(t, err)
	require.Empty(t, items)
}
