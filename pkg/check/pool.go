package check

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds self-check configuration.
type Config struct {
	MaxSeqLen   int                // longest sequence enumerated (default 1)
	NumWorkers  int                // parallel workers (default NumCPU)
	Exhaustive  bool               // also sweep A and carry for each sequence
	Fingerprint bool               // count distinct behaviours
	Logger      logrus.FieldLogger // progress; engines log through it only at debug level
}

// Task is a unit of work: one encoded sequence.
type Task struct {
	Code []byte
}

// WorkerPool runs tasks in parallel, one Runner per worker.
type WorkerPool struct {
	NumWorkers  int
	Exhaustive  bool
	Fingerprint bool
	Report      *Report

	log     logrus.FieldLogger
	checked atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers.
func NewWorkerPool(numWorkers int, log logrus.FieldLogger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if log == nil {
		log = silent()
	}
	return &WorkerPool{
		NumWorkers: numWorkers,
		Report:     NewReport(),
		log:        log,
	}
}

// Stats returns task counts.
func (wp *WorkerPool) Stats() (checked, failed, skipped int64) {
	return wp.checked.Load(), wp.failed.Load(), wp.skipped.Load()
}

// RunTasks distributes tasks across workers.
func (wp *WorkerPool) RunTasks(tasks []Task) {
	ch := make(chan Task, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	var wg sync.WaitGroup
	for i := 0; i < wp.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Illegal opcodes and faults are expected outcomes here;
			// keep the engines quiet.
			r := NewRunner(silent())
			for task := range ch {
				wp.processTask(r, task)
			}
		}()
	}
	wg.Wait()
}

func silent() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (wp *WorkerPool) processTask(r *Runner, task Task) {
	wp.checked.Add(1)
	m, skipped := r.QuickCheck(task.Code)
	wp.skipped.Add(int64(skipped))
	if m == nil && wp.Exhaustive {
		m = r.ExhaustiveAF(task.Code)
	}
	if m != nil {
		wp.failed.Add(1)
		wp.Report.Add(*m)
		wp.log.WithFields(logrus.Fields{
			"code":   Disassemble(m.Code),
			"vector": m.Vector,
		}).Warn("translation mismatch")
		return
	}
	if wp.Fingerprint {
		wp.Report.Observe(r.Fingerprint(task.Code))
	}
}

// Run enumerates every sequence up to cfg.MaxSeqLen instructions and
// compares block-translated against single-step execution.
func Run(cfg Config) *Report {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 1
	}
	pool := NewWorkerPool(cfg.NumWorkers, cfg.Logger)
	pool.Exhaustive = cfg.Exhaustive
	pool.Fingerprint = cfg.Fingerprint
	start := time.Now()

	for n := 1; n <= cfg.MaxSeqLen; n++ {
		tasks := collectTasks(n)
		pool.log.WithFields(logrus.Fields{"length": n, "sequences": len(tasks)}).Info("checking")
		pool.RunTasks(tasks)

		checked, failed, skipped := pool.Stats()
		pool.log.WithFields(logrus.Fields{
			"checked": checked,
			"failed":  failed,
			"skipped": skipped,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("done")
	}
	return pool.Report
}

// collectTasks encodes all non-prunable sequences of the given length.
func collectTasks(n int) []Task {
	var tasks []Task
	EnumerateSequences(n, func(seq []Instr) bool {
		if ShouldPrune(seq) {
			return true
		}
		tasks = append(tasks, Task{Code: Encode(seq)})
		return true
	})
	return tasks
}

// CheckOne runs a single encoded sequence through every check.
func CheckOne(code []byte) *Mismatch {
	r := NewRunner(silent())
	if m, _ := r.QuickCheck(code); m != nil {
		return m
	}
	return r.ExhaustiveAF(code)
}
