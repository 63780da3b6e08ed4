package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/infcat/pkg/inf"
)

// Mode selects how branch-local failures are handled.
type Mode int

const (
	// Lenient logs enumeration failures and malformed lines and keeps
	// walking, trading completeness for availability.
	Lenient Mode = iota
	// Strict returns the first enumeration failure or malformed line.
	Strict
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "lenient" or "strict" (case-insensitive) to a Mode.
// The empty string is Lenient.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown mode %q (want lenient or strict)", s)
	}
}

// Options configures a resolution.
type Options struct {
	// Seed entries are placed at the head of the file list, in order.
	Seed []string

	// HardwareID is a hardware id already known to the caller. When set the
	// walk never replaces it.
	HardwareID string

	// Mode selects lenient or strict handling of branch-local failures.
	Mode Mode

	// Dedupe drops repeated file names (case-insensitive), keeping the first.
	Dedupe bool

	// MaxFiles caps the file list, seed entries included. Zero means no cap.
	// Exceeding the cap fails the resolution.
	MaxFiles int

	// Trace records the walk in Result.Trace.
	Trace bool

	// Load configures descriptor loading in Resolve.
	Load inf.Options

	// Logger receives walk diagnostics at debug level and skipped failures
	// at warn level. Nil discards them.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
