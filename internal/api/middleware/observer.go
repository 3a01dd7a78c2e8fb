package middleware

// Observer receives guard and limiter outcomes. metrics.Recorder satisfies it.
type Observer interface {
	ObserveGuardDenial(guard string, status int)
	ObserveRateLimited()
}

type nopObserver struct{}

func (nopObserver) ObserveGuardDenial(string, int) {}
func (nopObserver) ObserveRateLimited()            {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
