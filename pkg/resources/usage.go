package resources

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Usage is the resource consumption of a reaped child, as reported by the
// kernel through wait4.
type Usage struct {
	User   time.Duration
	System time.Duration

	// MaxRSS is the peak resident set size, in bytes.
	MaxRSS uint64
}

// FromRusage converts the rusage filled in by wait4.
//
// Linux reports ru_maxrss in kilobytes.
func FromRusage(r *unix.Rusage) Usage {
	if r == nil {
		return Usage{}
	}
	var rss uint64
	if r.Maxrss > 0 {
		rss = uint64(r.Maxrss) * 1024
	}
	return Usage{
		User:   time.Duration(r.Utime.Nano()),
		System: time.Duration(r.Stime.Nano()),
		MaxRSS: rss,
	}
}

// Total returns the combined user and system CPU time.
func (u Usage) Total() time.Duration {
	return u.User + u.System
}

func (u Usage) String() string {
	return fmt.Sprintf("(user %s, system %s, rss %d)", u.User, u.System, u.MaxRSS)
}
