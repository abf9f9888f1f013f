package stage

import "context"

// Checker is implemented by pipeline stages that can report readiness before
// a run.
type Checker interface {
	HealthCheck(context.Context) Health
}

// Degraded constructs a ready Health record whose stage will run a fallback.
func Degraded(name, detail string) Health {
	return Health{Name: name, Ready: true, Degraded: true, Detail: detail}
}
