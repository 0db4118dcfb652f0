package httpapi

import "time"

// SetClock overrides the registry time source for tests.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// ExpireIdle runs one janitor sweep synchronously.
func (r *Registry) ExpireIdle() { r.expireIdle() }

// Hold locks a session as if a turn were running and returns the release
// function.
func (r *Registry) Hold(id string) (func(), error) {
	_, release, err := r.acquire(id)
	return release, err
}
