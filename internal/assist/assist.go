// Package assist implements the four code-assistant operations on top of the
// provider gateway.
package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codepix/codepix/internal/apperrors"
	"github.com/codepix/codepix/internal/codeblock"
	"github.com/codepix/codepix/internal/prompt"
	"github.com/codepix/codepix/internal/provider"
)

// Operation names one of the supported assistant operations.
type Operation string

const (
	OpGenerate  Operation = "generate"
	OpExplain   Operation = "explain"
	OpTranslate Operation = "translate"
	OpOptimize  Operation = "optimize"
)

var Operations = []Operation{OpGenerate, OpExplain, OpTranslate, OpOptimize}

// Caller is the part of provider.Gateway the service depends on.
type Caller interface {
	Call(ctx context.Context, key string, prompt string) (provider.Response, error)
}

type GenerateRequest struct {
	Prompt     string
	Provider   string
	Language   string
	Complexity string
}

type ExplainRequest struct {
	Prompt   string
	Provider string
}

type TranslateRequest struct {
	Code           string
	SourceLanguage string
	TargetLanguage string
	Provider       string
}

type OptimizeRequest struct {
	Code     string
	Language string
	Provider string
}

// Result is the outcome of one operation. Language fields are only set for
// the operations that echo them.
type Result struct {
	Operation      Operation
	Model          string
	Provider       string
	Result         string
	Elapsed        time.Duration
	SourceLanguage string
	TargetLanguage string
	Language       string
}

// TimeTaken renders Elapsed the way API clients expect it.
func (r Result) TimeTaken() string {
	return fmt.Sprintf("%.2f seconds", r.Elapsed.Seconds())
}

// Service runs operations against a provider gateway.
type Service struct {
	gateway Caller
	now     func() time.Time
}

func NewService(gateway Caller) *Service {
	return &Service{gateway: gateway, now: time.Now}
}

func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	if err := require("prompt", req.Prompt); err != nil {
		return Result{}, err
	}
	res := Result{Operation: OpGenerate, Provider: providerOrDefault(req.Provider)}
	p := prompt.Generation(req.Prompt, req.Language, req.Complexity)
	if err := s.run(ctx, &res, p, true); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) Explain(ctx context.Context, req ExplainRequest) (Result, error) {
	if err := require("prompt", req.Prompt); err != nil {
		return Result{}, err
	}
	res := Result{Operation: OpExplain, Provider: providerOrDefault(req.Provider)}
	if err := s.run(ctx, &res, prompt.Explanation(req.Prompt), false); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) Translate(ctx context.Context, req TranslateRequest) (Result, error) {
	if err := require("code", req.Code); err != nil {
		return Result{}, err
	}
	res := Result{
		Operation:      OpTranslate,
		Provider:       providerOrDefault(req.Provider),
		SourceLanguage: orDefault(req.SourceLanguage, prompt.DefaultSourceLanguage),
		TargetLanguage: orDefault(req.TargetLanguage, prompt.DefaultTargetLanguage),
	}
	p := prompt.Translation(req.Code, res.SourceLanguage, res.TargetLanguage)
	if err := s.run(ctx, &res, p, true); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) Optimize(ctx context.Context, req OptimizeRequest) (Result, error) {
	if err := require("code", req.Code); err != nil {
		return Result{}, err
	}
	res := Result{
		Operation: OpOptimize,
		Provider:  providerOrDefault(req.Provider),
		Language:  orDefault(req.Language, prompt.DefaultLanguage),
	}
	if err := s.run(ctx, &res, prompt.Optimization(req.Code, res.Language), false); err != nil {
		return Result{}, err
	}
	return res, nil
}

// run calls the provider and fills the model, result and timing fields.
// Generated and translated code is reduced to its first code block; prose
// answers are returned untouched.
func (s *Service) run(ctx context.Context, res *Result, p string, extract bool) error {
	start := s.now()
	resp, err := s.gateway.Call(ctx, res.Provider, p)
	if err != nil {
		return err
	}
	res.Model = resp.Model
	res.Result = resp.Text
	if extract {
		res.Result = codeblock.Extract(resp.Text)
	}
	res.Elapsed = s.now().Sub(start)
	return nil
}

func require(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation(fmt.Sprintf("Missing %q in request body", field))
	}
	return nil
}

func providerOrDefault(name string) string {
	return orDefault(name, provider.Default.String())
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
