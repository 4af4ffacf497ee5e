package linear

import "github.com/YuminosukeSato/treeml/pkg/log"

// Option configures LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether to prepend a bias column.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithLogger replaces the model's logger.
func WithLogger(logger log.Logger) Option {
	return func(lr *LinearRegression) {
		lr.logger = logger
	}
}
