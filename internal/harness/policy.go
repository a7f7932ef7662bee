package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/goldrun/internal/stage"
)

// ErrUnknownPolicy is returned by ParsePolicy for an unrecognized name.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy decides whether a run continues after a result. passed is the
// verdict the sink returned when reporting res.
type Policy interface {
	Continue(res *stage.Result, passed bool) bool
}

// FailFast stops at the first result the sink did not report as passed.
type FailFast struct{}

// Continue returns passed.
func (FailFast) Continue(_ *stage.Result, passed bool) bool {
	return passed
}

// CollectAll never stops early.
type CollectAll struct{}

// Continue always returns true.
func (CollectAll) Continue(*stage.Result, bool) bool {
	return true
}

// Policy names accepted by ParsePolicy.
const (
	PolicyFailFast   = "fail-fast"
	PolicyCollectAll = "collect-all"
)

// ParsePolicy returns the policy for name. The empty string is FailFast.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyFailFast:
		return FailFast{}, nil
	case PolicyCollectAll:
		return CollectAll{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
