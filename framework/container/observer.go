package container

import "time"

// Observer is notified of every Get. cached is true when the shared instance
// was returned without producing anything.
type Observer interface {
	OnResolve(id string, cached bool, elapsed time.Duration)
	OnError(id string, err error)
}

type nopObserver struct{}

func (nopObserver) OnResolve(string, bool, time.Duration) {}
func (nopObserver) OnError(string, error)                 {}
