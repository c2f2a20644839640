package options

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transform"
	"github.com/goliatone/go-formbuilder/pkg/transform/expr"
)

// DefaultStaticDelay keeps static options asynchronous like the HTTP sources.
const DefaultStaticDelay = 100 * time.Millisecond

// Resolver loads the selectable options of choice fields.
type Resolver struct {
	client      *http.Client
	baseURL     string
	staticDelay time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for api and external sources.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithInternalBaseURL sets the prefix applied to relative internal API urls.
func WithInternalBaseURL(base string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimSpace(base)
	}
}

// WithStaticDelay overrides DefaultStaticDelay. Zero disables the delay.
func WithStaticDelay(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.staticDelay = d
		}
	}
}

// WithRequestTimeout bounds each HTTP request. Without it only the caller's
// context applies.
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded transforms and request traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:      http.DefaultClient,
		staticDelay: DefaultStaticDelay,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Outcome is the single value delivered by Load.
type Outcome struct {
	Options []model.OptionItem
	Err     error
}

// Load resolves in the background. The channel yields exactly one Outcome and
// is then closed.
func (r *Resolver) Load(ctx context.Context, source model.OptionSource, static string, api *model.APIConfig) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		items, err := r.Resolve(ctx, source, static, api)
		ch <- Outcome{Options: items, Err: err}
	}()
	return ch
}

// ResolveField resolves the options configured on a choice field. Fields
// without a choice variant resolve to nothing.
func (r *Resolver) ResolveField(ctx context.Context, field model.Field) ([]model.OptionItem, error) {
	attrs, ok := field.Attrs.(*model.ChoiceAttrs)
	if !ok {
		return []model.OptionItem{}, nil
	}
	if attrs.Source.Source == "" && len(attrs.Inline) > 0 {
		return append([]model.OptionItem(nil), attrs.Inline...), nil
	}
	return r.Resolve(ctx, attrs.Source.Source, attrs.Source.Static, attrs.Source.API)
}

// Resolve returns the options for a source. Unknown sources and api configs
// without a url resolve to an empty list. Failures are *Error values.
func (r *Resolver) Resolve(ctx context.Context, source model.OptionSource, static string, api *model.APIConfig) ([]model.OptionItem, error) {
	switch source {
	case model.OptionSourceStatic:
		items := ParseStatic(static)
		if err := r.wait(ctx); err != nil {
			return nil, failure(KindNetwork, source, "", "Option loading cancelled", err)
		}
		return items, nil
	case model.OptionSourceAPI, model.OptionSourceExternal:
		if api == nil || strings.TrimSpace(api.URL) == "" {
			return []model.OptionItem{}, nil
		}
		return r.fetch(ctx, source, api)
	default:
		return []model.OptionItem{}, nil
	}
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.staticDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.staticDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Resolver) fetch(ctx context.Context, source model.OptionSource, api *model.APIConfig) ([]model.OptionItem, error) {
	target, err := r.targetURL(source, api.URL)
	if err != nil {
		return nil, failure(KindConfig, source, api.URL, "Invalid API URL format", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := r.buildRequest(ctx, source, target, api)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, failure(KindNetwork, source, target, sourceMessage(source), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		e := failure(KindStatus, source, target, sourceMessage(source), fmt.Errorf("unexpected status %s", resp.Status))
		e.Status = resp.StatusCode
		return nil, e
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure(KindNetwork, source, target, sourceMessage(source), err)
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, failure(KindDecode, source, target, "API response is not valid JSON", err)
	}

	data := payload
	if path := strings.TrimSpace(api.DataPath); path != "" {
		data, _ = expr.Lookup(payload, path)
	}
	items, ok := data.([]any)
	if !ok {
		return nil, failure(KindNotArray, source, target, "API response is not an array", nil)
	}

	r.logger.Debug("options: fetched", "source", source, "url", target, "items", len(items))
	return r.mapItems(items, api), nil
}

func (r *Resolver) mapItems(items []any, api *model.APIConfig) []model.OptionItem {
	valueField := strings.TrimSpace(api.ValueField)
	if valueField == "" {
		valueField = "value"
	}
	labelField := strings.TrimSpace(api.LabelField)
	if labelField == "" {
		labelField = "label"
	}
	if strings.TrimSpace(api.Transform) == "" {
		return transform.Default(items, valueField, labelField)
	}

	spec, err := transform.Parse(api.Transform)
	if err != nil {
		r.logger.Warn("options: transform rejected", "url", api.URL, "error", err)
		return []model.OptionItem{}
	}
	out, err := spec.Apply(items, valueField, labelField)
	if err != nil {
		r.logger.Warn("options: transform failed", "url", api.URL, "error", err)
		return []model.OptionItem{}
	}
	return out
}

func (r *Resolver) targetURL(source model.OptionSource, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if source == model.OptionSourceAPI && r.baseURL != "" && !isAbsolute(raw) {
		raw = strings.TrimRight(r.baseURL, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}
	return parsed.String(), nil
}

func (r *Resolver) buildRequest(ctx context.Context, source model.OptionSource, target string, api *model.APIConfig) (*http.Request, error) {
	method := normalizeMethod(api.Method)
	if method == "" {
		method = http.MethodGet
	}
	if !supportedMethod(method) {
		return nil, failure(KindConfig, source, target, "Unsupported HTTP method", fmt.Errorf("method %q", api.Method))
	}

	var body io.Reader
	switch method {
	case http.MethodPost, http.MethodPut:
		if api.Params != nil {
			data, err := json.Marshal(api.Params)
			if err != nil {
				return nil, failure(KindConfig, source, target, "Invalid request params", err)
			}
			body = bytes.NewReader(data)
		}
	default:
		if len(api.Params) > 0 {
			target = withQuery(target, api.Params)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, failure(KindConfig, source, target, "Invalid API request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range api.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

func withQuery(target string, params map[string]any) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	query := parsed.Query()
	for key, value := range params {
		query.Set(key, transform.Text(value))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// normalizeMethod upper-cases a configured method; "post" and "POST" are
// the same request.
func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func isAbsolute(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.IsAbs()
}
