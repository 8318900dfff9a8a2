package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/thumbnail-analyzer/internal/config"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/domain"
	"github.com/fairyhunter13/thumbnail-analyzer/internal/usecase"
	"github.com/fairyhunter13/thumbnail-analyzer/pkg/imagex"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg      config.Config
	Keywords *usecase.Keywords
	Script   *usecase.Script
	Social   *usecase.Social
	Vision   *usecase.Vision
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, keywords *usecase.Keywords, script *usecase.Script, social *usecase.Social, vision *usecase.Vision) *Server {
	return &Server{Cfg: cfg, Keywords: keywords, Script: script, Social: social, Vision: vision}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Thumbnail Analyzer</title></head>
<body>
<h1>Thumbnail Analyzer</h1>
<ul>
<li>POST /generate_script</li>
<li>GET /analyze_keyword?query=&amp;suggest=</li>
<li>GET /keyword_metrics?keyword=</li>
<li>POST /generate_tweet</li>
<li>POST /upload_and_query</li>
<li>POST /compare_models</li>
</ul>
</body>
</html>
`

// Index serves a small HTML page listing the endpoints.
func (s *Server) Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, indexHTML)
	}
}

// Healthz reports liveness.
func (s *Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// GenerateScript handles POST /generate_script.
func (s *Server) GenerateScript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var in usecase.ScriptInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(in); err != nil {
			verrs := map[string]string{}
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		in.Topic = SanitizeQuery(in.Topic)
		res, err := s.Script.Generate(r.Context(), in)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// AnalyzeKeyword handles GET /analyze_keyword.
func (s *Server) AnalyzeKeyword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := SanitizeQuery(r.URL.Query().Get("query"))
		if vr := ValidateQuery("query", query); !vr.Valid {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, vr.Errors[0].Message), vr.Errors)
			return
		}
		count := ParseSuggest(r.URL.Query().Get("suggest"))
		res, err := s.Keywords.Analyze(r.Context(), query, count)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// KeywordMetrics handles GET /keyword_metrics.
func (s *Server) KeywordMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := SanitizeQuery(r.URL.Query().Get("keyword"))
		if vr := ValidateQuery("keyword", keyword); !vr.Valid {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, vr.Errors[0].Message), vr.Errors)
			return
		}
		res, err := s.Keywords.Metrics(r.Context(), keyword)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// errHandled signals the response was already written.
var errHandled = errors.New("response already written")

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		return fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument)
	}
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large",
				Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
			}})
			return errHandled
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// imageFromForm pulls the named file field out of an already-parsed multipart
// form, sniffs that it is an image and re-encodes it as JPEG. An absent field
// is not an error; the caller decides whether it is required.
func (s *Server) imageFromForm(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidArgument, field, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s file is empty", domain.ErrInvalidArgument, field)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w: %s must be an image, got %s", domain.ErrInvalidArgument, field, mime.String())
	}
	jpegBytes, err := imagex.ReencodeJPEG(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a decodable image", domain.ErrInvalidArgument, field)
	}
	return jpegBytes, nil
}

// GenerateTweet handles POST /generate_tweet. Image and topic are both
// optional but at least one is required.
func (s *Server) GenerateTweet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.parseMultipart(w, r); err != nil {
			if !errors.Is(err, errHandled) {
				writeError(w, r, err, nil)
			}
			return
		}
		image, err := s.imageFromForm(r, "image")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		topic := SanitizeQuery(r.FormValue("topic"))
		res, err := s.Social.Generate(r.Context(), topic, image)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// UploadAndQuery handles POST /upload_and_query. Image and query required.
func (s *Server) UploadAndQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, query, ok := s.visionForm(w, r)
		if !ok {
			return
		}
		res, err := s.Vision.Analyze(r.Context(), query, image)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// CompareModels handles POST /compare_models with the same form contract as
// UploadAndQuery.
func (s *Server) CompareModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		image, query, ok := s.visionForm(w, r)
		if !ok {
			return
		}
		res, err := s.Vision.Compare(r.Context(), query, image)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) visionForm(w http.ResponseWriter, r *http.Request) (image []byte, query string, ok bool) {
	if err := s.parseMultipart(w, r); err != nil {
		if !errors.Is(err, errHandled) {
			writeError(w, r, err, nil)
		}
		return nil, "", false
	}
	image, err := s.imageFromForm(r, "image")
	if err != nil {
		writeError(w, r, err, nil)
		return nil, "", false
	}
	if len(image) == 0 {
		writeError(w, r, fmt.Errorf("%w: image file required", domain.ErrInvalidArgument), map[string]string{"field": "image"})
		return nil, "", false
	}
	query = SanitizeQuery(r.FormValue("query"))
	if vr := ValidateQuery("query", query); !vr.Valid {
		writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, vr.Errors[0].Message), vr.Errors)
		return nil, "", false
	}
	return image, query, true
}
