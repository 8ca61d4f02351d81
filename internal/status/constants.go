// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before any poll completed.
const HealthUnknown uint16 = 0

// HealthOK represents a poll where every reading succeeded.
const HealthOK uint16 = 1

// HealthDegraded represents a poll where some, but not all, readings failed.
const HealthDegraded uint16 = 2

// HealthError represents a poll where every reading failed.
const HealthError uint16 = 3

// ---- LIMITS ----

// MaxSecondsInError is where the seconds-in-error counter saturates.
const MaxSecondsInError = 65535

// HealthName returns the lowercase name used in envelopes and logs.
func HealthName(code uint16) string {
	switch code {
	case HealthOK:
		return "ok"
	case HealthDegraded:
		return "degraded"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}
