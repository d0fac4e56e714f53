package engine

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// BuildOptions tunes transports created by Build.
type BuildOptions struct {
	// PassthroughRPS and PassthroughBurst configure one limiter per relay.
	// A non-positive rate disables pacing.
	PassthroughRPS   float64
	PassthroughBurst int
}

// Build turns transport specs ("direct", "proxy:<url>",
// "passthrough:<template>") into engines, preserving order.
func Build(specs []string, opts BuildOptions) ([]Engine, error) {
	engines := make([]Engine, 0, len(specs))
	for _, spec := range specs {
		kind, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
		switch kind {
		case "direct":
			engines = append(engines, NewHTTPEngine())
		case "proxy":
			e, err := NewProxyEngine(arg)
			if err != nil {
				return nil, err
			}
			engines = append(engines, e)
		case "passthrough":
			var limiter *rate.Limiter
			if opts.PassthroughRPS > 0 {
				burst := opts.PassthroughBurst
				if burst < 1 {
					burst = 1
				}
				limiter = rate.NewLimiter(rate.Limit(opts.PassthroughRPS), burst)
			}
			e, err := NewPassthroughEngine(arg, limiter)
			if err != nil {
				return nil, err
			}
			engines = append(engines, e)
		default:
			return nil, fmt.Errorf("engine: unknown transport %q", spec)
		}
	}
	return engines, nil
}
