package check

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FuzzConfig holds random-walk check configuration.
type FuzzConfig struct {
	Chains     int    // independent mutation chains, one goroutine each (default 1)
	Iterations int    // sequences checked per chain (default 10000)
	MaxLen     int    // longest sequence generated (default 8)
	Seed       uint64 // 0 picks a random seed
	Logger     logrus.FieldLogger
}

// Fuzz checks randomly mutated sequences. Each chain starts from a random
// sequence and mutates it after every check, so it reaches lengths and
// immediates that Run cannot enumerate.
func Fuzz(cfg FuzzConfig) *Report {
	if cfg.Chains <= 0 {
		cfg.Chains = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 10000
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 8
	}
	base := cfg.Seed
	if base == 0 {
		base = rand.Uint64()
	}
	pool := NewWorkerPool(cfg.Chains, cfg.Logger)
	start := time.Now()
	pool.log.WithFields(logrus.Fields{
		"chains":     cfg.Chains,
		"iterations": cfg.Iterations,
		"seed":       base,
	}).Info("fuzzing")

	var wg sync.WaitGroup
	for id := range cfg.Chains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seed := base + uint64(id)*0x9e3779b97f4a7c15
			m := NewMutator(rand.New(rand.NewPCG(seed, seed^0x5a5a5a5a)), cfg.MaxLen)
			r := NewRunner(silent())
			seq := m.Random(1 + m.rng.IntN(cfg.MaxLen))
			for range cfg.Iterations {
				pool.processTask(r, Task{Code: Encode(seq)})
				seq = m.Mutate(seq)
			}
		}()
	}
	wg.Wait()

	checked, failed, skipped := pool.Stats()
	pool.log.WithFields(logrus.Fields{
		"checked": checked,
		"failed":  failed,
		"skipped": skipped,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("done")
	return pool.Report
}
