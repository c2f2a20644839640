package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formbuilder/pkg/catalog"
	"github.com/goliatone/go-formbuilder/pkg/importer"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/options"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/wire"
)

type listResponse[T any] struct {
	Data T `json:"data"`
}

func (s *Server) listFieldTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, listResponse[[]catalog.FieldTypeDefinition]{Data: s.catalog.List()})
}

func (s *Server) createField(w http.ResponseWriter, r *http.Request) {
	fieldType := model.FieldType(chi.URLParam(r, "type"))
	field, err := s.catalog.CreateField(fieldType)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownFieldType) {
			writeError(w, s.logger, http.StatusNotFound, "UNKNOWN_FIELD_TYPE", err.Error())
			return
		}
		writeError(w, s.logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, field)
}

type exportRequest struct {
	Definition model.Definition `json:"definition"`
	Rows       []model.Row      `json:"rows,omitempty"`
	ReadOnly   bool             `json:"readOnly"`
	// Format is "json" (default) or "yaml".
	Format string `json:"format,omitempty"`
}

func (s *Server) exportSchema(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", "json":
		out, err := s.exporter.ToBackend(req.Definition, req.ReadOnly, req.Rows)
		if err != nil {
			writeError(w, s.logger, http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
			return
		}
		writeJSON(w, s.logger, http.StatusOK, out)
	case "yaml":
		out, err := s.exporter.ToYAML(req.Definition, req.ReadOnly, req.Rows)
		if err != nil {
			writeError(w, s.logger, http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	default:
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_FORMAT", "format must be json or yaml")
	}
}

type importResponse struct {
	Definition model.Definition `json:"definition"`
	Rows       []model.Row      `json:"rows,omitempty"`
	Format     importer.Format  `json:"format"`
	HasLayout  bool             `json:"hasLayout"`
	ReadOnly   bool             `json:"readOnly"`
}

// importSchema takes the raw document as the body; ?name= overrides the form
// name.
func (s *Server) importSchema(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	res := s.importer.Import(body, r.URL.Query().Get("name"))
	if res.Err != nil {
		writeError(w, s.logger, http.StatusUnprocessableEntity, "IMPORT_FAILED", res.Err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, importResponse{
		Definition: res.Definition,
		Rows:       res.Rows,
		Format:     res.Format,
		HasLayout:  res.HasLayout,
		ReadOnly:   res.ReadOnly,
	})
}

func (s *Server) previewSchema(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, s.importer.Preview(body))
}

func (s *Server) lintSchema(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	opts := validation.Options{SkipLayout: r.URL.Query().Get("layout") == "skip"}
	result := validation.ValidateDocument(r.Context(), wire.SourceInline("request body"), body, opts)
	writeJSON(w, s.logger, http.StatusOK, result)
}

type resolveRequest struct {
	OptionSource  model.OptionSource `json:"optionSource"`
	StaticOptions string             `json:"staticOptions,omitempty"`
	APIConfig     *model.APIConfig   `json:"apiConfig,omitempty"`
}

func (s *Server) resolveOptions(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	switch req.OptionSource {
	case model.OptionSourceStatic, model.OptionSourceAPI, model.OptionSourceExternal:
	default:
		writeError(w, s.logger, http.StatusUnprocessableEntity, "INVALID_CONFIG", "unknown option source "+string(req.OptionSource))
		return
	}
	if req.OptionSource == model.OptionSourceExternal && req.APIConfig != nil && strings.TrimSpace(req.APIConfig.URL) != "" {
		if problems := options.ValidateAPIConfig(req.APIConfig); len(problems) > 0 {
			writeError(w, s.logger, http.StatusUnprocessableEntity, "INVALID_CONFIG", problems[0], problems...)
			return
		}
	}

	items, err := s.resolver.Resolve(r.Context(), req.OptionSource, req.StaticOptions, req.APIConfig)
	if err != nil {
		var optErr *options.Error
		if errors.As(err, &optErr) {
			if optErr.Kind == options.KindConfig {
				writeError(w, s.logger, http.StatusUnprocessableEntity, "INVALID_CONFIG", optErr.Message)
				return
			}
			writeError(w, s.logger, http.StatusBadGateway, "OPTIONS_"+strings.ToUpper(string(optErr.Kind)), optErr.Message)
			return
		}
		writeError(w, s.logger, http.StatusBadGateway, "OPTIONS_FAILED", err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusOK, listResponse[[]model.OptionItem]{Data: items})
}
