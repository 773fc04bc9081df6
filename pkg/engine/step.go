package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oisee/i8080/pkg/translate"
)

// EventKind says why Step or Run returned.
type EventKind uint8

const (
	EventBlock     EventKind = iota // blocks ran, execution can go on
	EventInterrupt                  // an interrupt was taken, nothing else ran
	EventTrap                       // stopped on a breakpoint; PC is its address
	EventHalt                       // halt executed
	EventStop                       // the Run stop condition held
)

var eventNames = [...]string{"block", "interrupt", "trap", "halt", "stop"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "event?"
}

// Event is the result of a Step or Run.
type Event struct {
	Kind  EventKind
	PC    uint16
	Exit  translate.ExitKind // exit of the last block run
	Insns int                // guest instructions retired
}

// Step is one return to the scheduler: it either takes a pending
// interrupt or runs one block, following chain links when enabled.
func (e *Engine) Step() (Event, error) {
	if ok, err := e.serviceInterrupt(); ok {
		return Event{Kind: EventInterrupt, PC: e.State.PC}, err
	}
	if e.State.Halted {
		return Event{Kind: EventHalt, PC: e.State.PC}, ErrHalted
	}

	ev := Event{Kind: EventBlock}
	ent := e.block(e.State.PC)
	for hops := 0; ; hops++ {
		e.running = ent
		r := ent.Exec(&e.State, e.bus, e.stopRunning)
		e.running = nil

		e.stats.Blocks++
		e.stats.Insns += uint64(r.Executed)
		ev.Insns += r.Executed
		ev.Exit = r.Exit
		ev.PC = e.State.PC

		switch r.Exit {
		case translate.ExitTrap:
			e.resume = true
			e.resumeAt = e.State.PC
			ev.Kind = EventTrap
			e.log.WithField("pc", hex16(ev.PC)).Debug("breakpoint")
			return ev, nil
		case translate.ExitHalt:
			ev.Kind = EventHalt
			return ev, nil
		case translate.ExitIllegal:
			op := ent.Insns[len(ent.Insns)-1].Op
			e.log.WithFields(logrus.Fields{"pc": hex16(ev.PC), "opcode": hex8(op)}).Error("illegal instruction")
			return ev, &IllegalInstructionError{PC: ev.PC, Opcode: op}
		case translate.ExitFault:
			e.log.WithFields(logrus.Fields{"pc": hex16(ev.PC)}).WithError(r.Err).Warn("bus fault")
			return ev, &FaultError{PC: ev.PC, Err: r.Err}
		case translate.ExitInvalidated:
			return ev, nil
		}

		if !e.cfg.Chain || hops >= maxChain || (e.irq && e.State.IFF) {
			return ev, nil
		}
		next := e.successor(ent)
		if next == nil {
			return ev, nil
		}
		ent = next
	}
}

// StopFunc is checked by Run after every Step.
type StopFunc func(e *Engine) (bool, error)

// Run steps until a breakpoint, halt, error, ctx cancellation or stop
// reports true. Cancellation is only noticed between blocks.
func (e *Engine) Run(ctx context.Context, stop StopFunc) (Event, error) {
	var total int
	for {
		if err := ctx.Err(); err != nil {
			return Event{Kind: EventBlock, PC: e.State.PC, Insns: total}, err
		}
		ev, err := e.Step()
		total += ev.Insns
		ev.Insns = total
		if err != nil {
			return ev, err
		}
		switch ev.Kind {
		case EventTrap, EventHalt:
			return ev, nil
		}
		if stop != nil {
			done, err := stop(e)
			if err != nil {
				return ev, err
			}
			if done {
				ev.Kind = EventStop
				return ev, nil
			}
		}
	}
}

func hex16(v uint16) string { return fmt.Sprintf("0x%04x", v) }
func hex8(v uint8) string   { return fmt.Sprintf("0x%02x", v) }
