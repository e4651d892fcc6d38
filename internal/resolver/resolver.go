package resolver

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/layercfg/internal/document"
	"github.com/eugenenazirov/layercfg/internal/envtree"
	"github.com/eugenenazirov/layercfg/internal/templating"
	"github.com/eugenenazirov/layercfg/internal/tree"
)

type part struct {
	text   string
	policy tree.KeyPolicy
}

// Resolver merges an ordered list of configuration parts and re-renders
// their templates until no template syntax remains. A Resolver resolves
// once and is not safe for concurrent use.
type Resolver struct {
	parts        []*part
	renderer     Renderer
	parse        Parser
	env          map[string]string
	envDelimiter string
	maxPasses    int
	logger       *zap.Logger

	resolved bool
	passes   int
}

// New creates a Resolver. By default parts are parsed as YAML and rendered
// with a strict templating.Engine.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		parse:        document.Parse,
		envDelimiter: envtree.DefaultDelimiter,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPart appends a part merged under policy and returns r. Parts added
// after Resolve has been called are ignored.
func (r *Resolver) AddPart(text string, policy tree.KeyPolicy) *Resolver {
	if r.resolved {
		r.logger.Warn("part added after resolve, ignoring", zap.Int("parts", len(r.parts)))
		return r
	}
	r.parts = append(r.parts, &part{text: text, policy: policy})
	return r
}

// Passes reports how many merge passes Resolve ran.
func (r *Resolver) Passes() int {
	return r.passes
}

// Resolve merges all parts, renders them against the merged tree and
// repeats until none of them contains template syntax. When envPrefix is
// not empty, variables starting with it override existing keys; they are
// merged last under tree.PolicyExistent on every pass.
//
// Any error aborts the resolution and no tree is returned. Resolve can be
// called only once.
func (r *Resolver) Resolve(envPrefix string) (tree.Mapping, error) {
	if r.resolved {
		return nil, ErrAlreadyResolved
	}
	r.resolved = true

	env := r.env
	if env == nil {
		env = envtree.Environ()
	}
	renderer := r.renderer
	if renderer == nil {
		renderer = templating.New(templating.WithEnvironment(env))
	}

	var overrides tree.Mapping
	if envPrefix != "" {
		built, err := envtree.Build(env, envPrefix, r.envDelimiter)
		if err != nil {
			return nil, fmt.Errorf("build environment overrides: %w", err)
		}
		overrides = built
	}

	markers := renderer.Markers()
	for pass := 1; ; pass++ {
		r.passes = pass

		merged, err := r.merge(overrides)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", pass, err)
		}

		unresolved := r.countUnresolved(markers)
		r.logger.Debug("merge pass complete",
			zap.Int("pass", pass),
			zap.Int("parts", len(r.parts)),
			zap.Int("unresolved", unresolved),
		)
		if unresolved == 0 {
			r.logger.Info("configuration resolved", zap.Int("passes", pass), zap.Int("keys", len(merged)))
			return merged, nil
		}
		if r.maxPasses > 0 && pass >= r.maxPasses {
			return nil, fmt.Errorf("%w: %d parts still templated after %d passes", ErrPassLimit, unresolved, pass)
		}

		for i, p := range r.parts {
			rendered, err := renderer.Render(p.text, merged)
			if err != nil {
				return nil, fmt.Errorf("pass %d: render part %d: %w", pass, i, err)
			}
			p.text = rendered
		}
	}
}

// merge rebuilds the merged tree from scratch out of the current part texts.
func (r *Resolver) merge(overrides tree.Mapping) (tree.Mapping, error) {
	merged := tree.Mapping{}
	for i, p := range r.parts {
		docs, err := r.parse(p.text)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		for j, doc := range docs {
			if _, err := tree.Merge(merged, doc, p.policy); err != nil {
				return nil, fmt.Errorf("merge part %d document %d: %w", i, j, err)
			}
		}
	}

	if overrides != nil {
		if _, err := tree.Merge(merged, overrides, tree.PolicyExistent); err != nil {
			return nil, fmt.Errorf("merge environment overrides: %w", err)
		}
	}
	return merged, nil
}

func (r *Resolver) countUnresolved(markers []string) int {
	count := 0
	for _, p := range r.parts {
		for _, marker := range markers {
			if marker != "" && strings.Contains(p.text, marker) {
				count++
				break
			}
		}
	}
	return count
}
