package resources

import (
	"testing"
	"time"

	"github.com/shoenig/test/must"
	"golang.org/x/sys/unix"
)

func TestUsage_FromRusage(t *testing.T) {
	r := &unix.Rusage{
		Utime:  unix.NsecToTimeval((1500 * time.Millisecond).Nanoseconds()),
		Stime:  unix.NsecToTimeval((250 * time.Millisecond).Nanoseconds()),
		Maxrss: 2048,
	}

	u := FromRusage(r)
	must.Eq(t, 1500*time.Millisecond, u.User)
	must.Eq(t, 250*time.Millisecond, u.System)
	must.Eq(t, 1750*time.Millisecond, u.Total())
	must.Eq(t, uint64(2048*1024), u.MaxRSS)
}

func TestUsage_FromRusage_nil(t *testing.T) {
	u := FromRusage(nil)
	must.Eq(t, Usage{}, u)
	must.Eq(t, time.Duration(0), u.Total())
}
