package services

import (
	"context"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

type Method string

const (
	MethodFind   Method = "find"
	MethodGet    Method = "get"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
	MethodPatch  Method = "patch"
	MethodRemove Method = "remove"
)

var (
	AllMethods      = []Method{MethodFind, MethodGet, MethodCreate, MethodUpdate, MethodPatch, MethodRemove}
	ReadMethods     = []Method{MethodFind, MethodGet}
	MutatingMethods = []Method{MethodCreate, MethodUpdate, MethodPatch, MethodRemove}
)

// Params carries everything about a call that is not its payload.
type Params struct {
	Query    domain.Filter
	Route    map[string]string
	Identity *domain.Identity
}

// Call is the state threaded through the stages of one operation. Result
// holds a domain.Record or a []domain.Record once the handler has run.
type Call struct {
	Entity string
	Method Method
	ID     string
	Data   domain.Record
	Params Params
	Result any
}

type StageFunc func(ctx context.Context, call *Call) error

type Stage struct {
	Name string
	Run  StageFunc
}

// Pipeline is the ordered list of stages run around an operation handler.
// It is assembled when services are registered and not changed afterwards.
type Pipeline struct {
	before map[Method][]Stage
	after  map[Method][]Stage
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		before: make(map[Method][]Stage),
		after:  make(map[Method][]Stage),
	}
}

// Before appends stage to the pre-handler stages of methods, or of every
// method when none are given.
func (p *Pipeline) Before(stage Stage, methods ...Method) *Pipeline {
	for _, m := range methodsOrAll(methods) {
		p.before[m] = append(p.before[m], stage)
	}
	return p
}

// After appends stage to the post-handler stages of methods, or of every
// method when none are given.
func (p *Pipeline) After(stage Stage, methods ...Method) *Pipeline {
	for _, m := range methodsOrAll(methods) {
		p.after[m] = append(p.after[m], stage)
	}
	return p
}

// Describe lists stage names in execution order, the handler shown as "handler".
func (p *Pipeline) Describe(method Method) []string {
	names := make([]string, 0, len(p.before[method])+len(p.after[method])+1)
	for _, s := range p.before[method] {
		names = append(names, s.Name)
	}
	names = append(names, "handler")
	for _, s := range p.after[method] {
		names = append(names, s.Name)
	}
	return names
}

func (p *Pipeline) Run(ctx context.Context, call *Call, handler StageFunc) error {
	for _, s := range p.before[call.Method] {
		if err := s.Run(ctx, call); err != nil {
			return err
		}
	}
	if err := handler(ctx, call); err != nil {
		return err
	}
	for _, s := range p.after[call.Method] {
		if err := s.Run(ctx, call); err != nil {
			return err
		}
	}
	return nil
}

func methodsOrAll(methods []Method) []Method {
	if len(methods) == 0 {
		return AllMethods
	}
	seen := make(map[Method]bool, len(methods))
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
