package ffs

import (
	"errors"

	"go.uber.org/zap"
)

// Option adjusts a Controller during Mount.
type Option func(c *Controller) error

// WithLogger routes the controller's debug logging to log instead of the
// default nop logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) error {
		if log == nil {
			return errors.New("ffs: nil logger")
		}
		c.log = log
		return nil
	}
}

// WithCacheSize sets how many sectors the block cache keeps hot.
func WithCacheSize(size int) Option {
	return func(c *Controller) error {
		if size < 1 {
			return errors.New("ffs: cache size must be at least 1")
		}
		c.cacheSize = size
		return nil
	}
}
