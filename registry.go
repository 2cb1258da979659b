package treecodec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/reoring/treecodec/i18n"
	"github.com/reoring/treecodec/tree"
)

// Factory synthesizes a codec for a type on demand. It returns the codec as
// a Codec[T] boxed in any, or false when it does not handle t.
type Factory func(t reflect.Type) (any, bool)

// Registry resolves codecs from runtime type tokens. It is meant to be
// populated once at start-up and then shared; lookups are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	codecs    map[reflect.Type]any
	factories []Factory
	frozen    bool
	log       *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{codecs: map[reflect.Type]any{}, log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register binds c to T, replacing any earlier binding.
func Register[T any](r *Registry, c Codec[T]) error {
	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %s: %w", t, ErrRegistryFrozen)
	}
	r.codecs[t] = c
	r.log.Debug("codec registered", zap.Stringer("type", t))
	return nil
}

// MustRegister is Register that panics on a frozen registry.
func MustRegister[T any](r *Registry, c Codec[T]) {
	if err := Register(r, c); err != nil {
		panic(err)
	}
}

// RegisterFactory adds a factory. Factories are consulted newest first, and
// the codec they produce is cached under its type.
func (r *Registry) RegisterFactory(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register factory: %w", ErrRegistryFrozen)
	}
	r.factories = append(r.factories, f)
	r.log.Debug("codec factory registered", zap.Int("factories", len(r.factories)))
	return nil
}

// RegisterEnum registers a lookup codec for T built from explicit
// (name, value) pairs.
func RegisterEnum[T comparable](r *Registry, pairs ...EnumPair[T]) error {
	return Register[T](r, Enum(pairs...))
}

// Freeze rejects further registrations. Factory results are still cached.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	r.log.Debug("registry frozen", zap.Int("codecs", len(r.codecs)))
}

// Lookup returns the codec bound to T, asking the factories when none is.
func Lookup[T any](r *Registry) (Codec[T], bool) {
	t := reflect.TypeFor[T]()
	r.mu.RLock()
	c, ok := r.codecs[t]
	factories := r.factories
	r.mu.RUnlock()
	if ok {
		typed, ok := c.(Codec[T])
		return typed, ok
	}
	for i := len(factories) - 1; i >= 0; i-- {
		made, ok := factories[i](t)
		if !ok {
			continue
		}
		typed, ok := made.(Codec[T])
		if !ok {
			r.log.Warn("factory produced codec of wrong type",
				zap.Stringer("type", t), zap.String("got", fmt.Sprintf("%T", made)))
			continue
		}
		r.mu.Lock()
		if existing, raced := r.codecs[t]; raced {
			r.mu.Unlock()
			typed, ok := existing.(Codec[T])
			return typed, ok
		}
		r.codecs[t] = typed
		r.mu.Unlock()
		r.log.Debug("codec synthesized by factory", zap.Stringer("type", t))
		return typed, true
	}
	return nil, false
}

// MustLookup is Lookup that panics when no codec is found.
func MustLookup[T any](r *Registry) Codec[T] {
	c, ok := Lookup[T](r)
	if !ok {
		panic(noCodec(reflect.TypeFor[T]()))
	}
	return c
}

// DecodeAs decodes v with the codec registered for T.
func DecodeAs[T any](r *Registry, v tree.Value) Outcome[T] {
	c, ok := Lookup[T](r)
	if !ok {
		return Fail[T](noCodec(reflect.TypeFor[T]()))
	}
	return c.Decode(v)
}

// EncodeAs encodes v with the codec registered for T.
func EncodeAs[T any](r *Registry, v T) (tree.Value, error) {
	c, ok := Lookup[T](r)
	if !ok {
		return tree.Value{}, errors.New(noCodec(reflect.TypeFor[T]()))
	}
	return c.Encode(v), nil
}

func noCodec(t reflect.Type) string {
	return i18n.T(CodeNoCodec, map[string]string{"type": t.String()})
}

// EnumFactory returns a factory producing a lookup codec for T from its
// named constants. It lets a registry serve enumerated types that were not
// registered one by one.
func EnumFactory[T comparable](pairs ...EnumPair[T]) Factory {
	var once sync.Once
	var c Codec[T]
	want := reflect.TypeFor[T]()
	return func(t reflect.Type) (any, bool) {
		if t != want {
			return nil, false
		}
		once.Do(func() { c = Enum(pairs...) })
		return c, true
	}
}

// ListCodecFactory returns a factory serving []T from the codec registered
// for T.
func ListCodecFactory[T any](r *Registry) Factory {
	want := reflect.TypeFor[[]T]()
	return func(t reflect.Type) (any, bool) {
		if t != want {
			return nil, false
		}
		elem, ok := Lookup[T](r)
		if !ok {
			return nil, false
		}
		return ListOf(elem), true
	}
}
