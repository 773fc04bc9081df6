package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oisee/i8080/pkg/check"
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/engine"
	"github.com/oisee/i8080/pkg/inst"
	"github.com/oisee/i8080/pkg/watch"
)

func main() {
	log := logrus.New()
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "i8080",
		Short: "Intel 8080 translator, disassembler and runner",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// disasm command
	org := hexFlag(0xc000)
	var length int

	disasmCmd := &cobra.Command{
		Use:   "disasm [file]",
		Short: "Disassemble a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if length > 0 && length < len(data) {
				data = data[:length]
			}
			lines, err := inst.Disassemble(data, uint16(org))
			for _, l := range lines {
				fmt.Printf("%-24s; %s\n", l.String(), l.HexBytes())
			}
			if err != nil {
				return fmt.Errorf("disassembly stopped: %w", err)
			}
			return nil
		},
	}
	disasmCmd.Flags().Var(&org, "org", "Load address of the image")
	disasmCmd.Flags().IntVar(&length, "length", 0, "Bytes to disassemble (0 = all)")

	// asm command
	asmCmd := &cobra.Command{
		Use:   "asm [instructions]",
		Short: "Encode instructions, e.g. \"ld a,0x01 : halt\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := inst.Assemble(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("% x\n", code)
			return nil
		},
	}

	// run command
	var (
		load      string
		loadAt    = hexFlag(0xc000)
		boot      = hexFlag(0xc000)
		sp        hexFlag
		breaks    []string
		until     string
		chain     bool
		maxInsns  int
		snapOut   string
		snapIn    string
		showStats bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Load an image and run it until halt, breakpoint or stop condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			mem := new(cpu.Memory)
			if load != "" {
				data, err := os.ReadFile(load)
				if err != nil {
					return err
				}
				mem.Load(uint16(loadAt), data)
			}

			e := engine.New(mem, engine.Config{
				BootVector: uint16(boot),
				MaxInsns:   maxInsns,
				Chain:      chain,
				Logger:     log,
			})
			e.State.SP = uint16(sp)

			if snapIn != "" {
				snap, err := engine.LoadSnapshot(snapIn)
				if err != nil {
					return err
				}
				if err := e.Restore(snap); err != nil {
					return err
				}
			}

			for _, b := range breaks {
				addr, err := parseHex(b)
				if err != nil {
					return fmt.Errorf("breakpoint %q: %w", b, err)
				}
				e.AddBreakpoint(addr)
			}

			var stop engine.StopFunc
			if until != "" {
				cond, err := watch.Compile(until)
				if err != nil {
					return err
				}
				stop = cond.StopFunc()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			ev, runErr := e.Run(ctx, stop)
			fmt.Printf("%s at 0x%04x after %d instructions\n", ev.Kind, ev.PC, ev.Insns)
			if err := e.Dump(os.Stdout); err != nil {
				return err
			}
			if showStats {
				st := e.Stats()
				fmt.Printf("blocks=%d translations=%d hits=%d chained=%d invalidations=%d cached=%d\n",
					st.Blocks, st.Translations, st.Hits, st.Chained, st.Invalidations, e.CachedBlocks())
			}
			if snapOut != "" {
				if err := engine.SaveSnapshot(snapOut, e.Snapshot()); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	runCmd.Flags().StringVar(&load, "load", "", "Binary image to load")
	runCmd.Flags().Var(&loadAt, "at", "Load address of the image")
	runCmd.Flags().Var(&boot, "boot", "Boot vector (PC after reset)")
	runCmd.Flags().Var(&sp, "sp", "Initial stack pointer")
	runCmd.Flags().StringSliceVarP(&breaks, "break", "b", nil, "Breakpoint address (repeatable)")
	runCmd.Flags().StringVar(&until, "until", "", "Stop condition, e.g. \"a == 0 and pc > 0xc010\"")
	runCmd.Flags().BoolVar(&chain, "chain", true, "Chain same-page blocks")
	runCmd.Flags().IntVar(&maxInsns, "max-insns", 0, "Block length limit (0 = default)")
	runCmd.Flags().StringVar(&snapOut, "save", "", "Write a snapshot when the run stops")
	runCmd.Flags().StringVar(&snapIn, "restore", "", "Start from a snapshot")
	runCmd.Flags().BoolVar(&showStats, "stats", false, "Print translation statistics")

	// selfcheck command
	var (
		seqLen      int
		numWorkers  int
		exhaustive  bool
		fingerprint bool
	)

	selfcheckCmd := &cobra.Command{
		Use:   "selfcheck [instructions]",
		Short: "Compare block translation with single-instruction translation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				code, err := inst.Assemble(strings.Join(args, " "))
				if err != nil {
					return err
				}
				code = append(code, 0x76)
				if m := check.CheckOne(code); m != nil {
					printMismatch(*m)
					return fmt.Errorf("mismatch")
				}
				fmt.Printf("%s: ok\n", check.Disassemble(code))
				return nil
			}

			fmt.Printf("i8080 self-check\n")
			fmt.Printf("  Max sequence length: %d\n", seqLen)
			fmt.Printf("  Opcodes per position: %d\n", len(check.Ops()))
			fmt.Printf("  Vectors: %d\n", len(check.Vectors))
			fmt.Println()

			report := check.Run(check.Config{
				MaxSeqLen:   seqLen,
				NumWorkers:  numWorkers,
				Exhaustive:  exhaustive,
				Fingerprint: fingerprint,
				Logger:      log,
			})
			for _, m := range report.Mismatches() {
				printMismatch(m)
			}
			if fingerprint {
				fmt.Printf("Distinct behaviours: %d\n", report.Behaviours())
			}
			if n := report.Len(); n > 0 {
				return fmt.Errorf("%d mismatches", n)
			}
			fmt.Println("No mismatches")
			return nil
		},
	}
	selfcheckCmd.Flags().IntVar(&seqLen, "len", 1, "Maximum sequence length")
	selfcheckCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	selfcheckCmd.Flags().BoolVar(&exhaustive, "exhaustive", false, "Also sweep A and carry")
	selfcheckCmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "Count distinct behaviours")

	// fuzz command
	var (
		chains     int
		iterations int
		maxLen     int
		seed       uint64
	)

	fuzzCmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Compare translations of randomly mutated sequences",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := check.Fuzz(check.FuzzConfig{
				Chains:     chains,
				Iterations: iterations,
				MaxLen:     maxLen,
				Seed:       seed,
				Logger:     log,
			})
			for _, m := range report.Mismatches() {
				printMismatch(m)
			}
			if n := report.Len(); n > 0 {
				return fmt.Errorf("%d mismatches", n)
			}
			fmt.Println("No mismatches")
			return nil
		},
	}
	fuzzCmd.Flags().IntVar(&chains, "chains", 4, "Independent mutation chains")
	fuzzCmd.Flags().IntVar(&iterations, "iterations", 10000, "Sequences per chain")
	fuzzCmd.Flags().IntVar(&maxLen, "max-len", 8, "Longest sequence generated")
	fuzzCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 = random)")

	rootCmd.AddCommand(disasmCmd, asmCmd, runCmd, selfcheckCmd, fuzzCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printMismatch(m check.Mismatch) {
	fmt.Printf("MISMATCH: %s (vector %d)\n", check.Disassemble(m.Code), m.Vector)
	fmt.Printf("  block:  %s", m.Block.State.String())
	if m.Block.Err != "" {
		fmt.Printf("  error: %s\n", m.Block.Err)
	}
	fmt.Printf("  single: %s", m.Single.State.String())
	if m.Single.Err != "" {
		fmt.Printf("  error: %s\n", m.Single.Err)
	}
}
