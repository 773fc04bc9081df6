// Package engine runs guest code by translating it into cached basic
// blocks and executing them against a cpu.State.
package engine

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/translate"
)

// maxChain bounds how many chained blocks Step runs before returning to
// the caller.
const maxChain = 64

// Config holds engine settings. Zero values select defaults.
type Config struct {
	BootVector uint16             // PC after Reset
	MaxInsns   int                // block length limit (default translate.DefaultMaxInsns)
	Chain      bool               // run same-page successor blocks without returning from Step
	Logger     logrus.FieldLogger // default: a logger at warn level
}

// Stats counts engine activity since the last Reset.
type Stats struct {
	Blocks        uint64 // blocks executed
	Insns         uint64 // guest instructions retired
	Translations  uint64
	Hits          uint64 // cache lookups that found a block
	Chained       uint64 // blocks entered through a link
	Invalidations uint64 // blocks dropped by stores to code
}

// Engine is one emulated CPU. It is not safe for concurrent use; run
// several CPUs with several Engines.
type Engine struct {
	State cpu.State

	cfg   Config
	log   logrus.FieldLogger
	bus   *codeBus
	tr    translate.Translator
	cache *Cache
	bps   map[uint16]struct{}

	running   *entry // block being executed
	transient *entry // tracked but uncached block: resume or fetch fault
	resume    bool   // step over the breakpoint at resumeAt
	resumeAt  uint16
	irq       bool // interrupt latched
	irqVec    uint8
	stats     Stats
}

// New creates an engine on bus and resets it.
func New(bus cpu.Bus, cfg Config) *Engine {
	if cfg.MaxInsns <= 0 {
		cfg.MaxInsns = translate.DefaultMaxInsns
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		cfg.Logger = l
	}
	e := &Engine{
		cfg:   cfg,
		log:   cfg.Logger,
		tr:    translate.Translator{MaxInsns: cfg.MaxInsns},
		cache: NewCache(),
		bps:   make(map[uint16]struct{}),
	}
	e.bus = &codeBus{Bus: bus, e: e}
	e.Reset()
	return e
}

// Config returns the settings the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Bus returns the guest bus as seen by translated code.
func (e *Engine) Bus() cpu.Bus {
	return e.bus
}

// Reset puts the CPU in its power-on state at the boot vector and drops
// all translations. Breakpoints are kept.
func (e *Engine) Reset() {
	e.State.Reset(e.cfg.BootVector)
	e.cache.Flush()
	e.running = nil
	e.transient = nil
	e.resume = false
	e.irq = false
	e.stats = Stats{}
	e.log.WithField("pc", hex16(e.State.PC)).Debug("reset")
}

// Dump writes the register file in its fixed text layout.
func (e *Engine) Dump(w io.Writer) error {
	return e.State.Dump(w)
}

// ReadRegister returns slot n of the debugger register frame.
func (e *Engine) ReadRegister(n int) uint16 {
	return e.State.ReadRegister(n)
}

// WriteRegister stores slot n of the debugger register frame.
func (e *Engine) WriteRegister(n int, v uint16) bool {
	return e.State.WriteRegister(n, v)
}

// Flush drops all translations.
func (e *Engine) Flush() {
	n := e.cache.Len()
	e.cache.Flush()
	e.log.WithField("blocks", n).Debug("translation cache flushed")
}

// Stats returns the activity counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// CachedBlocks returns the number of blocks in the translation cache.
func (e *Engine) CachedBlocks() int {
	return e.cache.Len()
}

// Interrupt latches an external interrupt request for rst vector (0-7).
// It is taken at the next block boundary once interrupts are enabled.
func (e *Engine) Interrupt(vector uint8) {
	e.irq = true
	e.irqVec = vector & 7
}

// serviceInterrupt takes a latched interrupt. If the bus refuses the
// return address push, the state is restored, the request stays latched
// and the fault is returned.
func (e *Engine) serviceInterrupt() (bool, error) {
	if !e.irq || !e.State.IFF {
		return false, nil
	}
	prev := e.State
	e.State.IFF = false
	e.State.Halted = false
	e.State.Push(e.bus, e.State.PC)
	if err := e.bus.Fault(); err != nil {
		e.State = prev
		e.log.WithFields(logrus.Fields{"vector": e.irqVec, "pc": hex16(e.State.PC)}).WithError(err).Warn("bus fault on interrupt entry")
		return true, &FaultError{PC: e.State.PC, Err: err}
	}
	e.irq = false
	e.State.PC = uint16(e.irqVec) << 3
	e.log.WithFields(logrus.Fields{"vector": e.irqVec, "pc": hex16(e.State.PC)}).Debug("interrupt")
	return true, nil
}

// block returns the translation for pc, building it on a miss.
func (e *Engine) block(pc uint16) *entry {
	if e.resume {
		e.resume = false
		if e.resumeAt == pc && e.HasBreakpoint(pc) {
			// Built past the trap; kept out of the lookup table.
			b := e.tr.Translate(e.bus, pc, e, translate.Options{IgnoreBreakpoint: true})
			e.stats.Translations++
			return e.track(b)
		}
	}
	if ent := e.cache.Lookup(pc); ent != nil {
		e.stats.Hits++
		return ent
	}
	b := e.tr.Translate(e.bus, pc, e, translate.Options{})
	e.stats.Translations++
	e.log.WithFields(logrus.Fields{
		"pc":    hex16(b.PC),
		"insns": len(b.Insns),
		"exit":  b.Exit,
	}).Debug("translated block")
	if b.Exit == translate.ExitFault {
		// Retranslated next time, so the fetch is retried.
		return e.track(b)
	}
	return e.cache.Insert(b)
}

// track registers b for code-write invalidation without caching it. Only
// one such block is live at a time.
func (e *Engine) track(b *translate.Block) *entry {
	if e.transient != nil {
		e.cache.Untrack(e.transient)
	}
	e.transient = e.cache.Track(b)
	return e.transient
}

// successor returns the linked block for the engine's PC after ent ran.
func (e *Engine) successor(ent *entry) *entry {
	if !ent.valid {
		return nil
	}
	pc := e.State.PC
	slot, ok := ent.Successor(pc)
	if !ok {
		return nil
	}
	if next := ent.links[slot]; next != nil && next.valid && next.PC == pc {
		e.stats.Chained++
		return next
	}
	next := e.block(pc)
	if next != e.transient {
		ent.links[slot] = next
	}
	e.stats.Chained++
	return next
}

func (e *Engine) codeWritten(addr uint16) {
	n := e.cache.Invalidate(addr)
	if n == 0 {
		return
	}
	e.stats.Invalidations += uint64(n)
	e.log.WithFields(logrus.Fields{"addr": hex16(addr), "blocks": n}).Debug("code modified")
}

// stopRunning is polled between instructions of the running block.
func (e *Engine) stopRunning() bool {
	return e.running != nil && !e.running.valid
}
