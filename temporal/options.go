package temporal

type Option func(o *options)

type options struct {
	normalize bool
	preSorted bool
	capacity  int
	box       any
}

func WithNormalize() Option {
	return func(o *options) {
		o.normalize = true
	}
}

// WithPreSorted skips sorting; input out of time order is then rejected.
func WithPreSorted() Option {
	return func(o *options) {
		o.preSorted = true
	}
}

// WithCapacity makes a sequence expandable, reserving room for n instants.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}

		o.capacity = n
	}
}

// WithBox supplies the cached bounding box instead of computing it. The box must
// cover the data.
func WithBox[V any](box Box[V]) Option {
	return func(o *options) {
		o.box = box
	}
}

func applyOptions(opts []Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
