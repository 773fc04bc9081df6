package check

import (
	"context"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/engine"
)

// maxInsns caps a single run. Code that patches itself into a loop is
// reported as inconclusive rather than compared.
const maxInsns = 256

// Outcome is the observable result of running code from one vector.
type Outcome struct {
	State  cpu.State
	Writes map[uint16]uint8
	Err    string
	Capped bool
}

// Equal compares two outcomes.
func (o *Outcome) Equal(p *Outcome) bool {
	return o.State == p.State && o.Err == p.Err && maps.Equal(o.Writes, p.Writes)
}

// Runner executes code two ways: translated into whole blocks with
// chaining, and one instruction per block. Each Runner owns its engines
// and buses; use one per goroutine.
type Runner struct {
	blockBus, singleBus *Scratch
	block, single       *engine.Engine
}

// NewRunner creates a runner whose engines log to log.
func NewRunner(log logrus.FieldLogger) *Runner {
	r := &Runner{blockBus: NewScratch(), singleBus: NewScratch()}
	r.block = engine.New(r.blockBus, engine.Config{BootVector: Org, Chain: true, Logger: log})
	r.single = engine.New(r.singleBus, engine.Config{BootVector: Org, MaxInsns: 1, Logger: log})
	return r
}

func limit(e *engine.Engine) (bool, error) {
	return e.Stats().Insns >= maxInsns, nil
}

func run(e *engine.Engine, bus *Scratch, code []byte, s cpu.State) Outcome {
	bus.Load(Org, code)
	e.Reset()
	e.State = s
	ev, err := e.Run(context.Background(), limit)
	o := Outcome{
		State:  e.State,
		Writes: maps.Clone(bus.Writes()),
		Capped: ev.Kind == engine.EventStop,
	}
	if err != nil {
		o.Err = err.Error()
	}
	return o
}

// Compare runs code from s both ways. ok is false if the outcomes differ;
// capped is true if either run hit the instruction cap, in which case the
// outcomes are not compared.
func (r *Runner) Compare(code []byte, s cpu.State) (block, single Outcome, ok, capped bool) {
	block = run(r.block, r.blockBus, code, s)
	single = run(r.single, r.singleBus, code, s)
	if block.Capped || single.Capped {
		return block, single, true, true
	}
	return block, single, block.Equal(&single), false
}

// QuickCheck runs code from every vector and returns the first mismatch,
// or nil. The second result counts vectors that were inconclusive.
func (r *Runner) QuickCheck(code []byte) (*Mismatch, int) {
	skipped := 0
	for i := range Vectors {
		block, single, ok, capped := r.Compare(code, vector(i))
		if capped {
			skipped++
			continue
		}
		if !ok {
			return &Mismatch{Code: code, Vector: i, Block: block, Single: single}, skipped
		}
	}
	return nil, skipped
}

// ExhaustiveAF sweeps A over 0..255 and the carry flag over 0/1 with the
// remaining registers taken from the first vector (512 runs).
func (r *Runner) ExhaustiveAF(code []byte) *Mismatch {
	for a := 0; a < 256; a++ {
		for carry := uint8(0); carry <= 1; carry++ {
			s := vector(0)
			s.A = uint8(a)
			s.F |= carry
			block, single, ok, capped := r.Compare(code, s)
			if !capped && !ok {
				return &Mismatch{Code: code, Vector: -1, Input: s, Block: block, Single: single}
			}
		}
	}
	return nil
}

// FingerprintSize is the number of bytes per vector in a fingerprint:
// A, F, B, C, D, E, H, L and SP.
const FingerprintSize = 10

// FingerprintLen is the total fingerprint length.
var FingerprintLen = FingerprintSize * len(Vectors)

// Fingerprint records the block-translated outcome of code on every
// vector. Sequences with different fingerprints behave differently.
func (r *Runner) Fingerprint(code []byte) string {
	fp := make([]byte, 0, FingerprintLen)
	for i := range Vectors {
		out := run(r.block, r.blockBus, code, vector(i)).State
		fp = append(fp, out.A, out.F, out.B, out.C, out.D, out.E, out.H, out.L,
			uint8(out.SP>>8), uint8(out.SP))
	}
	return string(fp)
}
