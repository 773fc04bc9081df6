package engine

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/oisee/i8080/pkg/cpu"
)

// Snapshot holds what is needed to resume a CPU: registers, the guest
// address space as read through the bus, breakpoints and a latched
// interrupt.
type Snapshot struct {
	State       cpu.State
	Memory      []byte
	Breakpoints []uint16
	IRQ         bool
	IRQVector   uint8
}

// Snapshot captures the engine and the 64 KiB the bus maps.
func (e *Engine) Snapshot() *Snapshot {
	mem := make([]byte, 0x10000)
	for i := range mem {
		mem[i] = e.bus.Bus.Read(uint16(i))
	}
	return &Snapshot{
		State:       e.State,
		Memory:      mem,
		Breakpoints: e.Breakpoints(),
		IRQ:         e.irq,
		IRQVector:   e.irqVec,
	}
}

// Restore writes a snapshot back through the bus and drops all
// translations.
func (e *Engine) Restore(snap *Snapshot) error {
	if len(snap.Memory) != 0x10000 {
		return ErrSnapshot
	}
	for i, b := range snap.Memory {
		e.bus.Bus.Write(uint16(i), b)
	}
	e.State = snap.State
	e.State.F = cpu.SanitizeFlags(e.State.F)
	clear(e.bps)
	for _, a := range snap.Breakpoints {
		e.bps[a] = struct{}{}
	}
	e.irq = snap.IRQ
	e.irqVec = snap.IRQVector & 7
	e.resume = false
	e.cache.Flush()
	return nil
}

// WriteSnapshot encodes a snapshot with gob.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	return gob.NewEncoder(w).Encode(snap)
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSnapshot writes a snapshot to a file.
func SaveSnapshot(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSnapshot(f, snap)
}

// LoadSnapshot loads a snapshot from a file.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
