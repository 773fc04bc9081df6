package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(cfg Config, org uint16, code ...uint8) (*Engine, *cpu.Memory) {
	mem := new(cpu.Memory)
	mem.Load(org, code)
	cfg.BootVector = org
	return New(mem, cfg), mem
}

func TestResetBootVector(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{}, 0xc000, 0x3e, 0x12, 0x76)
	assert.Equal(uint16(0xc000), e.State.PC)

	_, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	e.State.B, e.State.SP, e.State.IFF = 9, 0x1234, true
	assert.NotZero(e.CachedBlocks())

	e.Reset()
	assert.Equal(cpu.State{PC: 0xc000, F: cpu.FlagsDefault}, e.State)
	assert.Zero(e.CachedBlocks())
	assert.Equal(uint16(0x0002), e.ReadRegister(0))
	assert.Equal(uint16(0xc000), e.ReadRegister(5))
	assert.Equal(uint16(0), e.ReadRegister(6))

	var sb strings.Builder
	require.NoError(t, e.Dump(&sb))
	assert.Equal("PC=c000 A=00 BC=0000 DE=0000 HL=0000 SP=0000\nS=0 Z=0 A=0 P=0 C=0\n", sb.String())
}

func TestJumpEndsStep(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{}, 0x0000,
		0x06, 0x01, // ld b,0x01
		0xc3, 0x10, 0x00, // jmp 0x0010
		0x04, // inc b
	)
	ev, err := e.Step()
	require.NoError(t, err)
	assert.Equal(EventBlock, ev.Kind)
	assert.Equal(translate.ExitJump, ev.Exit)
	assert.Equal(uint16(0x0010), ev.PC)
	assert.Equal(2, ev.Insns)
	assert.Equal(uint8(1), e.State.B)
}

func TestCallReturnStack(t *testing.T) {
	assert := assert.New(t)
	e, mem := newEngine(Config{}, 0x0000,
		0x31, 0x00, 0x20, // ld sp,0x2000
		0xcd, 0x00, 0x01, // call 0x0100
		0x76, // halt
	)
	mem.Load(0x0100, []uint8{0x3e, 0x77, 0xc9}) // ld a,0x77; ret

	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(uint16(0x0100), e.State.PC)
	assert.Equal(uint16(0x1ffe), e.State.SP)
	assert.Equal(uint16(0x0006), cpu.ReadWord(mem, e.State.SP))

	ev, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(EventHalt, ev.Kind)
	assert.Equal(uint16(0x0007), e.State.PC)
	assert.Equal(uint16(0x2000), e.State.SP)
	assert.Equal(uint8(0x77), e.State.A)
}

// countdown: ld b,3; loop: dec b; jnz loop; halt
var countdown = []uint8{0x06, 0x03, 0x05, 0xc2, 0x02, 0x00, 0x76}

func TestBreakpointInLoop(t *testing.T) {
	for _, chain := range []bool{false, true} {
		e, _ := newEngine(Config{Chain: chain}, 0x0000, countdown...)
		e.AddBreakpoint(0x0002)

		var seen []uint8
		for {
			ev, err := e.Run(context.Background(), nil)
			require.NoError(t, err)
			if ev.Kind == EventHalt {
				break
			}
			require.Equal(t, EventTrap, ev.Kind)
			assert.Equal(t, uint16(0x0002), ev.PC)
			seen = append(seen, e.State.B)
		}
		assert.Equal(t, []uint8{3, 2, 1}, seen, "chain=%v", chain)
		assert.Equal(t, uint8(0), e.State.B)
	}
}

func TestBreakpointManagement(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{}, 0x0000, countdown...)
	_, err := e.Step()
	require.NoError(t, err)
	require.NotZero(t, e.CachedBlocks())

	e.AddBreakpoint(0x0006)
	e.AddBreakpoint(0x0003)
	assert.Zero(e.CachedBlocks(), "adding a breakpoint flushes translations")
	assert.Equal([]uint16{0x0003, 0x0006}, e.Breakpoints())
	assert.True(e.HasBreakpoint(0x0003))

	assert.True(e.RemoveBreakpoint(0x0003))
	assert.False(e.RemoveBreakpoint(0x0003))
	assert.Equal([]uint16{0x0006}, e.Breakpoints())

	e.Reset()
	assert.Equal([]uint16{0x0006}, e.Breakpoints(), "reset keeps breakpoints")
	ev, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(EventTrap, ev.Kind)
	assert.Equal(uint16(0x0006), ev.PC)
	assert.False(e.State.Halted)
}

func TestIllegalInstruction(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{}, 0x4000, 0x3e, 0x05, 0x04, 0xdd, 0x3c)
	_, err := e.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(err, ErrIllegalInstruction)

	var ill *IllegalInstructionError
	require.ErrorAs(t, err, &ill)
	assert.Equal(uint16(0x4003), ill.PC)
	assert.Equal(uint8(0xdd), ill.Opcode)
	assert.Equal(uint8(0x05), e.State.A)
	assert.Equal(uint8(0x01), e.State.B)
	assert.Equal(uint16(0x4003), e.State.PC)
}

func TestSelfModifyingCode(t *testing.T) {
	assert := assert.New(t)
	e, mem := newEngine(Config{}, 0x0000,
		0x3e, 0x3c, // ld a,0x3c (inc a)
		0x32, 0x07, 0x00, // st (0x0007),a
		0x00, 0x00, // nop; nop
		0x00, // patched to inc a
		0x76, // halt
	)
	ev, err := e.Step()
	require.NoError(t, err)
	assert.Equal(translate.ExitInvalidated, ev.Exit)
	assert.Equal(uint16(0x0005), e.State.PC)
	assert.Equal(uint8(0x3c), mem[0x0007])

	ev, err = e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(EventHalt, ev.Kind)
	assert.Equal(uint8(0x3d), e.State.A)
	assert.NotZero(e.Stats().Invalidations)
}

func TestStoreOutsideCodeKeepsBlock(t *testing.T) {
	e, _ := newEngine(Config{}, 0x0000,
		0x3e, 0x01, // ld a,0x01
		0x32, 0x00, 0x03, // st (0x0300),a
		0x3c, // inc a
		0x76, // halt
	)
	ev, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, translate.ExitHalt, ev.Exit)
	assert.Equal(t, uint8(0x02), e.State.A)
	assert.Zero(t, e.Stats().Invalidations)
}

// sum: ld b,0x10; xor a; loop: add b; dec b; jnz loop; halt
var sum = []uint8{0x06, 0x10, 0xaf, 0x80, 0x05, 0xc2, 0x03, 0x00, 0x76}

func TestChaining(t *testing.T) {
	var steps [2]int
	var states [2]cpu.State
	for i, chain := range []bool{false, true} {
		e, _ := newEngine(Config{Chain: chain}, 0x0000, sum...)
		for {
			ev, err := e.Step()
			require.NoError(t, err)
			steps[i]++
			if ev.Kind == EventHalt {
				break
			}
		}
		states[i] = e.State
		if chain {
			assert.NotZero(t, e.Stats().Chained)
		}
	}
	assert.Equal(t, states[0], states[1])
	assert.Equal(t, uint8(0x88), states[0].A)
	assert.Less(t, steps[1], steps[0])
}

func TestInterrupt(t *testing.T) {
	assert := assert.New(t)
	e, mem := newEngine(Config{}, 0x0000, 0xfb, 0x76) // ei; halt
	mem.Load(0x0038, []uint8{0x3e, 0x99, 0x76})       // ld a,0x99; halt

	ev, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(EventHalt, ev.Kind)
	assert.True(e.State.Halted)
	assert.True(e.State.IFF)

	_, err = e.Step()
	assert.ErrorIs(err, ErrHalted)

	e.Interrupt(7)
	ev, err = e.Step()
	require.NoError(t, err)
	assert.Equal(EventInterrupt, ev.Kind)
	assert.Equal(uint16(0x0038), e.State.PC)
	assert.False(e.State.Halted)
	assert.False(e.State.IFF)
	assert.Equal(uint16(0x0002), cpu.ReadWord(mem, e.State.SP))

	_, err = e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(uint8(0x99), e.State.A)
}

func TestInterruptWaitsForEnable(t *testing.T) {
	e, _ := newEngine(Config{}, 0x0000, 0x00, 0xfb, 0x76)
	e.Interrupt(1)
	ev, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, EventBlock, ev.Kind, "interrupts start disabled")

	ev, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, EventInterrupt, ev.Kind)
	assert.Equal(t, uint16(0x0008), e.State.PC)
}

var errROM = errors.New("rom write")

type romBus struct {
	cpu.Memory
	err error
}

func (r *romBus) Write(addr uint16, v uint8) {
	if addr < 0x1000 {
		r.err = errROM
		return
	}
	r.Memory.Write(addr, v)
}

func (r *romBus) Fault() error {
	err := r.err
	r.err = nil
	return err
}

func TestFaultForwarded(t *testing.T) {
	assert := assert.New(t)
	bus := &romBus{}
	bus.Load(0x0000, []uint8{0x3e, 0x01, 0x32, 0x00, 0x00, 0x76})
	e := New(bus, Config{})
	_, err := e.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(err, errROM)

	var fe *FaultError
	require.ErrorAs(t, err, &fe)
	assert.Equal(uint16(0x0002), fe.PC)
	assert.Equal(uint8(0x01), e.State.A)
}

var errUnmapped = errors.New("unmapped")

// mappedBus has memory below limit only.
type mappedBus struct {
	cpu.Memory
	limit uint16
	err   error
}

func (m *mappedBus) Read(addr uint16) uint8 {
	if addr >= m.limit {
		m.err = errUnmapped
		return 0xff
	}
	return m.Memory.Read(addr)
}

func (m *mappedBus) Write(addr uint16, v uint8) {
	if addr >= m.limit {
		m.err = errUnmapped
		return
	}
	m.Memory.Write(addr, v)
}

func (m *mappedBus) Fault() error {
	err := m.err
	m.err = nil
	return err
}

func TestFetchFault(t *testing.T) {
	assert := assert.New(t)
	bus := &mappedBus{limit: 0x0100}
	bus.Load(0x00fd, []uint8{0x3c, 0x3c, 0x3c}) // inc a x3, then unmapped
	e := New(bus, Config{BootVector: 0x00fd})

	for i := 0; i < 2; i++ {
		ev, err := e.Step()
		assert.ErrorIs(err, errUnmapped)
		var fe *FaultError
		require.ErrorAs(t, err, &fe)
		assert.Equal(uint16(0x0100), fe.PC)
		assert.Equal(uint16(0x0100), e.State.PC)
		assert.Equal(translate.ExitFault, ev.Exit)
		assert.Equal(uint8(3), e.State.A)
		assert.Zero(e.CachedBlocks(), "faulting block must not be cached")
	}
	assert.Equal(uint64(3), e.Stats().Insns)
}

func TestFetchFaultAtBlockStart(t *testing.T) {
	bus := &mappedBus{limit: 0x0100}
	e := New(bus, Config{BootVector: 0x0200})
	ev, err := e.Step()
	assert.ErrorIs(t, err, errUnmapped)
	assert.Equal(t, 0, ev.Insns)
	assert.Equal(t, uint16(0x0200), e.State.PC)
	assert.Zero(t, e.CachedBlocks())
}

func TestInterruptEntryFault(t *testing.T) {
	assert := assert.New(t)
	bus := &romBus{}
	bus.Load(0x0000, []uint8{
		0x31, 0x00, 0x08, // ld sp,0x0800 (read-only stack)
		0xfb, // ei
		0x76, // halt
	})
	bus.Load(0x0008, []uint8{0x06, 0x07, 0x76}) // ld b,7; halt
	e := New(bus, Config{})

	ev, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, EventHalt, ev.Kind)

	e.Interrupt(1)
	for i := 0; i < 2; i++ {
		_, err = e.Step()
		assert.ErrorIs(err, errROM)
		var fe *FaultError
		require.ErrorAs(t, err, &fe)
		assert.Equal(uint16(0x0005), fe.PC)
		assert.Equal(uint16(0x0005), e.State.PC)
		assert.Equal(uint16(0x0800), e.State.SP)
		assert.True(e.State.IFF)
		assert.True(e.State.Halted)
		assert.Zero(e.State.B)
	}
}

func TestResumeAfterTrapBounded(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{Chain: true}, 0x0100,
		0x3c,             // inc a
		0xc3, 0x00, 0x01, // jmp 0x0100
	)
	e.AddBreakpoint(0x0100)

	for i := 0; i < 1000; i++ {
		ev, err := e.Step()
		require.NoError(t, err)
		require.Equal(t, EventTrap, ev.Kind)
	}
	assert.Equal(uint8(999%256), e.State.A)
	assert.Equal(1, e.CachedBlocks())
	assert.LessOrEqual(len(e.cache.pages[translate.Page(0x0100)]), 2)
}

func TestRunStopCondition(t *testing.T) {
	e, _ := newEngine(Config{}, 0x0000, 0x3c, 0xc3, 0x00, 0x00) // inc a; jmp 0
	ev, err := e.Run(context.Background(), func(e *Engine) (bool, error) {
		return e.State.A == 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, EventStop, ev.Kind)
	assert.Equal(t, 10, ev.Insns)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndependentEngines(t *testing.T) {
	const n = 8
	results := make([]uint8, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := append([]uint8(nil), sum...)
			code[1] = uint8(i + 1)
			e, _ := newEngine(Config{Chain: true}, 0x0000, code...)
			if _, err := e.Run(context.Background(), nil); err != nil {
				t.Error(err)
				return
			}
			results[i] = e.State.A
		}(i)
	}
	wg.Wait()
	for i, got := range results {
		k := i + 1
		assert.Equal(t, uint8(k*(k+1)/2), got, "engine %d", i)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)
	e, _ := newEngine(Config{}, 0x0000, sum...)
	e.AddBreakpoint(0x0004)
	_, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, e.Snapshot()))
	snap, err := ReadSnapshot(&buf)
	require.NoError(t, err)

	other := New(new(cpu.Memory), Config{})
	require.NoError(t, other.Restore(snap))
	assert.Equal(e.State, other.State)
	assert.Equal(e.Breakpoints(), other.Breakpoints())

	for _, eng := range []*Engine{e, other} {
		eng.RemoveBreakpoint(0x0004)
		ev, err := eng.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(EventHalt, ev.Kind)
	}
	assert.Equal(e.State, other.State)

	assert.ErrorIs(other.Restore(&Snapshot{}), ErrSnapshot)
}
