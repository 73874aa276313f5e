// Package ephemeris supplies the instants of new and full moons.
package ephemeris

import (
	"context"
	"errors"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
)

// ErrOutOfRange is returned when a gateway has no answer for the requested instant.
var ErrOutOfRange = errors.New(config.ErrOutOfRange)

// ErrContract is returned when phase instants violate the Gateway ordering
// guarantees, whoever detects it.
var ErrContract = errors.New(config.ErrGatewayContract)

// Gateway defines the contract for retrieving lunar phase instants.
// Implementations must be safe for concurrent use.
type Gateway interface {
	// Name returns the gateway name for logging.
	Name() string

	// PreviousNewMoon returns the last new moon strictly earlier than t.
	PreviousNewMoon(ctx context.Context, t time.Time) (time.Time, error)

	// NextNewMoon returns the first new moon strictly later than t.
	NextNewMoon(ctx context.Context, t time.Time) (time.Time, error)

	// NextFullMoon returns the first full moon strictly later than t.
	NextFullMoon(ctx context.Context, t time.Time) (time.Time, error)
}
