package facet

import "context"

// Base is a ready-made Facet implementation for providers that do not need
// their own type. Fields map one-to-one onto the optional capability
// interfaces; zero values opt out of the corresponding behavior.
type Base struct {
	FacetKind     string
	FacetContract string
	Deps          []string
	Funcs         map[string]any
	Props         map[string]any
	Overwritable  bool
	AttachFuncs   bool
	OnInit        func(ctx context.Context, env *Env) error
	OnDispose     func(ctx context.Context) error
}

func (b *Base) Kind() string { return b.FacetKind }

func (b *Base) Contract() string { return b.FacetContract }

func (b *Base) Requires() []string { return b.Deps }

func (b *Base) Methods() map[string]any { return b.Funcs }

func (b *Base) Properties() map[string]any { return b.Props }

func (b *Base) AllowOverwrite() bool { return b.Overwritable }

func (b *Base) Attach() bool { return b.AttachFuncs }

func (b *Base) Init(ctx context.Context, env *Env) error {
	if b.OnInit == nil {
		return nil
	}
	return b.OnInit(ctx, env)
}

func (b *Base) Dispose(ctx context.Context) error {
	if b.OnDispose == nil {
		return nil
	}
	return b.OnDispose(ctx)
}
