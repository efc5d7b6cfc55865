package plan

import "fmt"

// Limit is a usage bound that is either a finite count or unlimited.
// The zero value is Finite(0), which is always reached.
type Limit struct {
	n         int
	unlimited bool
}

func Finite(n int) Limit {
	return Limit{n: n}
}

func Unlimited() Limit {
	return Limit{unlimited: true}
}

func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the finite bound. Only meaningful when IsUnlimited is false.
func (l Limit) Value() int {
	return l.n
}

// Reached reports whether count has consumed the limit. An unlimited
// limit is never reached.
func (l Limit) Reached(count int) bool {
	if l.unlimited {
		return false
	}
	return count >= l.n
}

// Remaining returns how many uses are left, floored at zero. Unlimited
// limits report -1 so callers can render an "unlimited" badge.
func (l Limit) Remaining(count int) int {
	if l.unlimited {
		return -1
	}
	if count >= l.n {
		return 0
	}
	return l.n - count
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.n)
}
