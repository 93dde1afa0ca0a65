package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/codepix/codepix/internal/apperrors"
	"github.com/codepix/codepix/internal/assist"
	"github.com/codepix/codepix/internal/logger"
	"github.com/codepix/codepix/internal/provider"
	"github.com/codepix/codepix/internal/version"
)

type generateBody struct {
	Prompt        string `json:"prompt"`
	ModelProvider string `json:"modelProvider"`
	Language      string `json:"language"`
	Complexity    string `json:"complexity"`
}

type explainBody struct {
	Prompt        string `json:"prompt"`
	ModelProvider string `json:"modelProvider"`
}

type translateBody struct {
	Code           string `json:"code"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	ModelProvider  string `json:"modelProvider"`
}

type optimizeBody struct {
	Code          string `json:"code"`
	Language      string `json:"language"`
	ModelProvider string `json:"modelProvider"`
}

// Response is the JSON body returned by the operation routes.
type Response struct {
	Model          string `json:"model"`
	ModelProvider  string `json:"modelProvider"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Language       string `json:"language,omitempty"`
	Result         string `json:"result"`
	TimeTaken      string `json:"time_taken"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.assistant.Generate(r.Context(), assist.GenerateRequest{
		Prompt:     body.Prompt,
		Provider:   body.ModelProvider,
		Language:   body.Language,
		Complexity: body.Complexity,
	})
	s.respond(w, r, res, err)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var body explainBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.assistant.Explain(r.Context(), assist.ExplainRequest{
		Prompt:   body.Prompt,
		Provider: body.ModelProvider,
	})
	s.respond(w, r, res, err)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.assistant.Translate(r.Context(), assist.TranslateRequest{
		Code:           body.Code,
		SourceLanguage: body.SourceLanguage,
		TargetLanguage: body.TargetLanguage,
		Provider:       body.ModelProvider,
	})
	s.respond(w, r, res, err)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeBody
	if !s.decode(w, r, &body) {
		return
	}
	res, err := s.assistant.Optimize(r.Context(), assist.OptimizeRequest{
		Code:     body.Code,
		Language: body.Language,
		Provider: body.ModelProvider,
	})
	s.respond(w, r, res, err)
}

// decode reads a JSON body into dst. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonErr(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonErr(w, "Invalid JSON in request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res assist.Result, err error) {
	if err != nil {
		status := apperrors.HTTPStatus(err)
		kind, _ := apperrors.KindOf(err)
		log := logger.FromContext(r.Context()).With("path", r.URL.Path, "kind", string(kind))
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", "error", err)
		} else {
			log.Warn("Request rejected", "error", err)
		}
		jsonErr(w, apperrors.PublicMessage(err), status)
		return
	}
	jsonOK(w, NewResponse(res), http.StatusOK)
}

func NewResponse(res assist.Result) Response {
	return Response{
		Model:          res.Model,
		ModelProvider:  res.Provider,
		SourceLanguage: res.SourceLanguage,
		TargetLanguage: res.TargetLanguage,
		Language:       res.Language,
		Result:         res.Result,
		TimeTaken:      res.TimeTaken(),
	}
}

type statusBody struct {
	Status        string            `json:"status"`
	Message       string            `json:"message"`
	Timestamp     string            `json:"timestamp"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Version       string            `json:"version"`
	Environment   runtimeInfo       `json:"environment"`
	Services      map[string]string `json:"services"`
	Endpoints     []string          `json:"endpoints"`
	Health        healthInfo        `json:"health"`
}

type runtimeInfo struct {
	Go       string `json:"go"`
	Platform string `json:"platform"`
	Arch     string `json:"arch"`
}

type healthInfo struct {
	Memory memoryInfo `json:"memory"`
	PID    int        `json:"pid"`
}

type memoryInfo struct {
	Used  string `json:"used"`
	Total string `json:"total"`
}

var endpoints = []string{
	"GET /api/status",
	"POST /api/ai/generate",
	"POST /api/ai/explain",
	"POST /api/ai/translate",
	"POST /api/ai/optimize",
	"GET /healthz",
	"GET /metrics",
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	now := timeNow()
	uptime := now.Sub(s.started)

	services := make(map[string]string, len(provider.Keys))
	configured := map[provider.Key]bool{}
	if s.providers != nil {
		configured = s.providers.Configured()
	}
	for _, k := range provider.Keys {
		services[k.String()] = "not configured"
		if configured[k] {
			services[k.String()] = "configured"
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	jsonOK(w, statusBody{
		Status:        "OK",
		Message:       "CodePix Backend API is running",
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		Uptime:        formatUptime(uptime),
		UptimeSeconds: int64(uptime / time.Second),
		Version:       version.Version,
		Environment: runtimeInfo{
			Go:       runtime.Version(),
			Platform: runtime.GOOS,
			Arch:     runtime.GOARCH,
		},
		Services:  services,
		Endpoints: endpoints,
		Health: healthInfo{
			Memory: memoryInfo{
				Used:  fmt.Sprintf("%d MB", mem.HeapAlloc/1024/1024),
				Total: fmt.Sprintf("%d MB", mem.HeapSys/1024/1024),
			},
			PID: os.Getpid(),
		},
	}, http.StatusOK)
}

func formatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
