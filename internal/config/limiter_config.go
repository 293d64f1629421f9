package config

import "time"

type LimiterConfig interface {
	GetLockoutThreshold() int64
	GetLockoutWindow() time.Duration
	GetStrictFailureCounting() bool
}

type Limiter struct {
	Threshold      int64         `env:"LOCKOUT_THRESHOLD,default=5"`
	Window         time.Duration `env:"LOCKOUT_WINDOW,default=30m"`
	StrictCounting bool          `env:"STRICT_FAILURE_COUNTING,default=false"`
}

var _ LimiterConfig = Limiter{}

func (l Limiter) GetLockoutThreshold() int64 {
	if l.Threshold <= 0 {
		return 5
	}
	return l.Threshold
}

func (l Limiter) GetLockoutWindow() time.Duration {
	if l.Window <= 0 {
		return 30 * time.Minute
	}
	return l.Window
}

// GetStrictFailureCounting reports whether only rejected credentials count
// towards a lockout. Provider outages are counted too when false.
func (l Limiter) GetStrictFailureCounting() bool {
	return l.StrictCounting
}
