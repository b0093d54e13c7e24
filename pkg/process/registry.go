package process

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// logger receives Trace level events about forks and reaps; see SetLogger.
var logger = hclog.NewNullLogger()

// SetLogger replaces the logger used by this package.
func SetLogger(l hclog.Logger) {
	if l == nil {
		l = hclog.NewNullLogger()
	}
	logger = l.Named("process")
}

// entry is the bookkeeping kept for a child between its fork and its reap.
type entry struct {
	pid     int
	body    string
	started time.Time

	// status is set when WaitAny reaps the pid before its Child does
	status *Status
}

// registry tracks the live children created by this package.
//
// Every pid is inserted at fork and removed exactly once by whichever of
// Child.Wait or WaitAny reaps it.
type registry struct {
	lock     sync.Mutex
	children map[int]*entry
}

var children = &registry{children: make(map[int]*entry)}

func (r *registry) insert(e *entry) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.children[e.pid] = e
}

// reaped records the status of pid and removes it from the registry. It
// returns false if pid was not created by this package.
func (r *registry) reaped(pid int, status Status) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, exists := r.children[pid]
	if !exists {
		return false
	}
	e.status = &status
	delete(r.children, pid)
	return true
}

// forget removes pid without a status, for a child whose wait failed.
func (r *registry) forget(pid int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.children, pid)
}

// recorded returns the status stored by a previous reap of e, if any.
func (r *registry) recorded(e *entry) (Status, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e.status == nil {
		return Status{}, false
	}
	return *e.status, true
}

// size returns the number of children still waiting to be reaped.
func (r *registry) size() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.children)
}
