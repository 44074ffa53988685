package validation

import (
	"reflect"
)

type Option func(o *Options)

// Options carries objects from parent models down to the children they validate.
type Options struct {
	ContextObjects map[reflect.Type]any
}

// WithContextObject makes obj available to nested validators via GetContextObject.
func WithContextObject[T any](obj *T) Option {
	return func(o *Options) {
		if o.ContextObjects == nil {
			o.ContextObjects = make(map[reflect.Type]any)
		}
		o.ContextObjects[reflect.TypeFor[T]()] = obj
	}
}

func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetContextObject returns the object of type T registered with WithContextObject, or nil.
func GetContextObject[T any](o *Options) *T {
	if o == nil || o.ContextObjects == nil {
		return nil
	}

	obj, ok := o.ContextObjects[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}

	return obj.(*T)
}
