package resolve

import (
	"strings"

	errs "github.com/matzehuels/infcat/pkg/errors"
)

// aggregator accumulates the manifest in discovery order.
type aggregator struct {
	hardwareID string
	haveID     bool
	files      []string
	max        int
	seen       map[string]struct{}
}

func newAggregator(opts Options) (*aggregator, error) {
	a := &aggregator{
		hardwareID: opts.HardwareID,
		haveID:     opts.HardwareID != "",
		files:      make([]string, 0, len(opts.Seed)),
		max:        opts.MaxFiles,
	}
	if opts.Dedupe {
		a.seen = make(map[string]struct{})
	}
	for _, f := range opts.Seed {
		if _, err := a.add(f); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// add appends name. It reports false when Dedupe dropped a repeat and fails
// once the list would grow past max.
func (a *aggregator) add(name string) (bool, error) {
	if a.seen != nil {
		key := strings.ToLower(name)
		if _, ok := a.seen[key]; ok {
			return false, nil
		}
		a.seen[key] = struct{}{}
	}
	if a.max > 0 && len(a.files) >= a.max {
		return false, errs.New(errs.ErrCodeCapacity, "file list exceeds %d entries at %q", a.max, name)
	}
	a.files = append(a.files, name)
	return true, nil
}

// setHardwareID records id from the first qualifying device line. An empty
// id still claims the slot.
func (a *aggregator) setHardwareID(id string) bool {
	if a.haveID {
		return false
	}
	a.hardwareID = id
	a.haveID = true
	return true
}

func (a *aggregator) result() Result {
	files := make([]string, len(a.files))
	copy(files, a.files)
	return Result{HardwareID: a.hardwareID, Files: files}
}
