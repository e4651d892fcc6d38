package templating

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

const (
	defaultLeftDelim  = "{{"
	defaultRightDelim = "}}"
)

// Engine renders configuration text with text/template against a
// configuration tree.
type Engine struct {
	left   string
	right  string
	strict bool
	env    map[string]string
	extra  template.FuncMap
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelims overrides the "{{" and "}}" action delimiters.
func WithDelims(left, right string) Option {
	return func(e *Engine) {
		if left != "" && right != "" {
			e.left, e.right = left, right
		}
	}
}

// WithStrict controls whether references to missing paths fail the render.
// Renders are strict by default.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithEnvironment sets the variables visible to the env and requiredEnv
// filters.
func WithEnvironment(env map[string]string) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithFuncs registers additional filters. They take precedence over the
// built-in ones.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.extra[name] = fn
		}
	}
}

// New creates a strict Engine with the default delimiters and an empty
// environment.
func New(opts ...Option) *Engine {
	e := &Engine{
		left:   defaultLeftDelim,
		right:  defaultRightDelim,
		strict: true,
		env:    map[string]string{},
		extra:  template.FuncMap{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Markers returns the substrings that open a template action. Text without
// any of them renders to itself.
func (e *Engine) Markers() []string {
	return []string{e.left}
}

// Delims returns the left and right action delimiters.
func (e *Engine) Delims() (string, string) {
	return e.left, e.right
}

// Render executes text as a template with ctx as its data.
func (e *Engine) Render(text string, ctx tree.Mapping) (string, error) {
	state := &renderState{}

	missingKey := "missingkey=default"
	if e.strict {
		missingKey = "missingkey=error"
	}

	tmpl, err := template.New("part").
		Delims(e.left, e.right).
		Option(missingKey).
		Funcs(e.funcMap(state)).
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, ctx.StringKeyed()); err != nil {
		if state.undefined != nil {
			return "", state.undefined
		}
		return "", classifyExecError(err)
	}
	return out.String(), nil
}
