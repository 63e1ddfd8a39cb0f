// Bench is a benchmarking tool for measuring perfect hash construction time,
// attempt counts, lookup latency and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 1000000 -hash siphash
//	go run ./cmd/bench -words rockyou.txt.xz
//
// Flags:
//
//	-keys         Number of random keys when -words is not set (default: 1,000,000)
//	-words        Line-delimited key file, optionally gzip or xz compressed
//	-hash         Hash family: siphash, xxh3, murmur3 or siphash64 (default: siphash)
//	-lambda       Average bucket size (default: 5)
//	-load-factor  Keys / slots (default: 1.0)
//	-workers      Concurrent construction attempts (default: 1)
//	-seed         Seed of the attempt seed generator (default: fixed)
//	-v            Log every construction attempt
package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"os"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ulikunitz/xz"
	"go.uber.org/zap"

	"github.com/tamirms/phf"
	"github.com/tamirms/phf/internal/chd"
	"github.com/tamirms/phf/internal/phfmap"
)

// fixedSeed makes runs comparable across builds.
const fixedSeed = 0xec58dfa74641af52

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// readWords reads one key per line from path, decompressing .gz and .xz
// files. Duplicate lines are dropped.
func readWords(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		r = xr
	}

	seen := make(map[string]struct{})
	var words [][]byte
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSuffix(sc.Text(), "\r")
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, []byte(w))
	}
	return words, sc.Err()
}

func randomKeys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = make([]byte, 16)
		_, _ = rand.Read(keys[i]) // crypto/rand.Read error is fatal system issue; ignore for benchmark
	}
	return keys
}

// peakSampler tracks peak heap and RSS at 10ms intervals.
// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses.
type peakSampler struct {
	peakAlloc atomic.Uint64
	peakRSS   atomic.Uint64
	done      chan struct{}
}

func startSampler(baseAlloc, baseRSS uint64) *peakSampler {
	s := &peakSampler{done: make(chan struct{})}
	s.peakAlloc.Store(baseAlloc)
	s.peakRSS.Store(baseRSS)
	go func() {
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&s.peakAlloc, samples[0].Value.Uint64())
				storeMax(&s.peakRSS, getMaxRSS())
			}
		}
	}()
	return s
}

func (s *peakSampler) stop() {
	close(s.done)
	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	storeMax(&s.peakAlloc, final.Alloc)
	storeMax(&s.peakRSS, getMaxRSS())
}

func storeMax(v *atomic.Uint64, x uint64) {
	for {
		old := v.Load()
		if x <= old || v.CompareAndSwap(old, x) {
			return
		}
	}
}

func main() {
	keysFlag := flag.Int("keys", 1_000_000, "number of random keys")
	wordsFlag := flag.String("words", "", "line-delimited key file (.gz and .xz supported)")
	hashFlag := flag.String("hash", "siphash", "hash family: siphash, xxh3, murmur3 or siphash64")
	lambdaFlag := flag.Int("lambda", chd.DefaultLambda, "average bucket size")
	loadFlag := flag.Float64("load-factor", chd.DefaultLoadFactor, "keys / slots")
	workersFlag := flag.Int("workers", 1, "concurrent construction attempts")
	seedFlag := flag.Uint64("seed", fixedSeed, "seed of the attempt seed generator")
	verbose := flag.Bool("v", false, "log every construction attempt")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (build phase only)")
	flag.Parse()

	hash, ok := phf.ParseHashFunc(*hashFlag)
	if !ok {
		fmt.Printf("Unknown hash family: %s (use siphash, xxh3, murmur3 or siphash64)\n", *hashFlag)
		return
	}

	var keys [][]byte
	if *wordsFlag != "" {
		fmt.Printf("Reading keys from %s...\n", *wordsFlag)
		words, err := readWords(*wordsFlag)
		if err != nil {
			fmt.Printf("Failed to read words: %v\n", err)
			return
		}
		keys = words
	} else {
		fmt.Println("Generating keys...")
		keys = randomKeys(*keysFlag)
	}
	numKeys := len(keys)
	if numKeys == 0 {
		fmt.Println("No keys")
		return
	}

	fmt.Println("Hashing keys...")
	hashStart := time.Now()
	for _, k := range keys {
		chd.Hash(hash, *seedFlag, k)
	}
	hashDuration := time.Since(hashStart)

	cfg := chd.DefaultConfig()
	cfg.Hash = hash
	cfg.Lambda = *lambdaFlag
	cfg.LoadFactor = *loadFlag
	cfg.Workers = *workersFlag
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			return
		}
		defer func() { _ = log.Sync() }()
		cfg.Logger = log
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()
	sampler := startSampler(baseline.Alloc, baselineRSS)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Building table...")
	buildStart := time.Now()
	src := mrand.NewPCG(*seedFlag, *seedFlag^0x9E3779B97F4A7C15)
	st, err := chd.Generate(context.Background(), keys, src, cfg)
	buildDuration := time.Since(buildStart)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Printf("could not create memory profile: %v\n", err)
		} else {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Printf("could not write memory profile: %v\n", err)
			}
			_ = f.Close()
		}
	}
	sampler.stop()

	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		return
	}

	fmt.Println("Validating lookups...")
	m := phfmap.FromState(st, keys, func(i int) int { return i })
	for i, k := range keys {
		if v, ok := m.GetBytes(k); !ok || v != i {
			fmt.Printf("Validation failed: key %d maps to (%d, %v)\n", i, v, ok)
			os.Exit(1)
		}
	}

	queryOrder := mrand.Perm(numKeys)
	numQueries := 1_000_000
	queryStart := time.Now()
	for i := range numQueries {
		_, _ = m.GetBytes(keys[queryOrder[i%numKeys]])
	}
	queryDuration := time.Since(queryStart)
	avgLatency := float64(queryDuration.Nanoseconds()) / float64(numQueries)

	peakHeapMem := sampler.peakAlloc.Load() - baseline.Alloc
	peakRSSMem := sampler.peakRSS.Load() - baselineRSS
	dispBits := float64(len(st.Disps)*64) / float64(numKeys)

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╗\n")
	fmt.Printf("║ Hash: %-14s║ Keys: %-9d║\n", hash, numKeys)
	fmt.Printf("╠═════════════════════╬════════════════╣\n")
	fmt.Printf("║ Metric              ║ Value          ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╣\n")
	fmt.Printf("║ Attempts            ║ %-15d║\n", st.Attempts)
	fmt.Printf("║ Buckets             ║ %-15d║\n", len(st.Disps))
	fmt.Printf("║ Capacity            ║ %-15d║\n", st.Capacity())
	fmt.Printf("║ Displacement bits   ║ %6.3f bits/key║\n", dispBits)
	fmt.Printf("║ Lookup latency      ║ %6.1f ns      ║\n", avgLatency)
	fmt.Printf("║ Hash time           ║ %6.2f sec     ║\n", hashDuration.Seconds())
	fmt.Printf("║ Build time          ║ %6.2f sec     ║\n", buildDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %6.2f M/sec   ║\n", float64(numKeys)/buildDuration.Seconds()/1_000_000)
	fmt.Printf("║ Peak heap memory    ║ %6.1f MB      ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %6.1f MB      ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╝\n")
}
