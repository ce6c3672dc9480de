package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"apply", PhaseApply, &log})
	r.Register(recorder{"sense", PhaseSense, &log})
	r.Register(recorder{"apply2", PhaseApply, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"sense", "apply", "apply2", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = nil
	r.TickPhase(PhaseApply, time.Millisecond)
	assert.Equal(t, []string{"apply", "apply2"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "collect", PhaseCollect.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
