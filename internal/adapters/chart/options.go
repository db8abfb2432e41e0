package chart

// Option applies a configuration option to the PieRenderer.
type Option func(*PieRenderer)

// WithFormat selects "svg" or "png" output.
func WithFormat(format string) Option {
	return func(r *PieRenderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithSize sets the chart size in pixels.
func WithSize(width, height int) Option {
	return func(r *PieRenderer) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}

// WithTitle sets the chart title. An empty title hides it.
func WithTitle(title string) Option {
	return func(r *PieRenderer) {
		r.title = title
	}
}
