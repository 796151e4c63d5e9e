// Package memoize turns arbitrary functions into cached functions. The cache
// key is derived from the function's qualified name and a canonical rendering
// of its arguments, so logically equal argument sets always hit the same
// entry, and Invalidate always targets exactly the key a matching call would
// have used.
package memoize

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Most remote backends cap key length; beyond this the argument portion of a
// key is replaced with a fixed-length content hash, keeping the function
// qualifier prefix readable.
const maxKeyLength = 250

// Cache is the subset of the cache manager API the memoizer needs.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
}

// Option configures a wrapped function.
type Option func(*options)

type options struct {
	ttl       time.Duration
	keyPrefix string
	keyFunc   func(args []interface{}) string
	condition func(result interface{}) bool
}

// WithTTL sets the TTL applied when storing results.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithKeyPrefix prepends a fixed prefix to every derived key.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keyPrefix = prefix }
}

// WithKeyFunc replaces the default argument rendering with a custom key
// function. The function qualifier prefix is still applied.
func WithKeyFunc(fn func(args []interface{}) string) Option {
	return func(o *options) { o.keyFunc = fn }
}

// WithCondition sets a predicate inspecting the computed result before it is
// stored. A rejected result is still returned to the caller but not cached.
// Useful for not caching nil or empty results.
func WithCondition(cond func(result interface{}) bool) Option {
	return func(o *options) { o.condition = cond }
}

// Func is a memoized function. Obtain one with Wrap.
type Func struct {
	cache Cache
	fn    reflect.Value
	name  string
	opts  options
}

// Wrap memoizes fn, which must be a function returning either a single value
// or a value and an error. Passing anything else is a programming error and
// panics. The call contract is unchanged: errors are never cached and are
// returned to the caller as-is.
func Wrap(cache Cache, fn interface{}, opts ...Option) *Func {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("memoize: Wrap requires a function, got %T", fn))
	}

	t := v.Type()
	if t.NumOut() < 1 || t.NumOut() > 2 {
		panic(fmt.Sprintf("memoize: function must return (T) or (T, error), got %d results", t.NumOut()))
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		panic("memoize: second return value must be an error")
	}

	f := &Func{
		cache: cache,
		fn:    v,
		name:  runtime.FuncForPC(v.Pointer()).Name(),
	}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// Key returns the cache key the given arguments map to.
func (f *Func) Key(args ...interface{}) string {
	var rendered string
	if f.opts.keyFunc != nil {
		rendered = f.opts.keyFunc(args)
	} else {
		rendered = canonicalArgs(args)
	}

	prefix := f.name
	if f.opts.keyPrefix != "" {
		prefix = f.opts.keyPrefix + ":" + f.name
	}

	key := prefix + ":" + rendered
	if len(key) > maxKeyLength {
		key = prefix + ":" + fmt.Sprintf("%016x", xxhash.Sum64String(key))
	}
	return key
}

// Call invokes the memoized function. A cached result is returned without
// invoking the underlying function; on a miss the function runs, its result
// is stored (unless the condition predicate rejects it), and returned.
//
// There is no single-flight coalescing: concurrent misses for the same key
// may each invoke the underlying function.
func (f *Func) Call(ctx context.Context, args ...interface{}) (interface{}, error) {
	key := f.Key(args...)

	if value, ok := f.cache.Get(ctx, key); ok {
		return value, nil
	}

	result, err := f.invoke(args)
	if err != nil {
		return nil, err
	}

	if f.opts.condition == nil || f.opts.condition(result) {
		f.cache.Set(ctx, key, result, f.opts.ttl)
	}
	return result, nil
}

// Invalidate deletes the entry the equivalent call would have used, leaving
// entries for other argument sets untouched. Reports whether an entry was
// removed.
func (f *Func) Invalidate(ctx context.Context, args ...interface{}) bool {
	return f.cache.Delete(ctx, f.Key(args...))
}

// invoke calls the underlying function via reflection and normalizes its
// results to (value, error).
func (f *Func) invoke(args []interface{}) (interface{}, error) {
	in := make([]reflect.Value, len(args))
	t := f.fn.Type()
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(paramType(t, i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	out := f.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// paramType returns the declared type of the i-th argument, unwrapping the
// element type for indices inside a variadic tail.
func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}
