package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cvpro"
	"github.com/aretw0/cvpro/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of edits to apply")
	versioned := flag.Bool("git", false, "Commit every save to git")
	delay := flag.Duration("delay", core.DefaultSaveDelay, "Save debounce window")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "cvpro_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ws, err := cvpro.Open(ctx, benchDir,
		cvpro.WithLogger(logger),
		cvpro.WithAutoInit(true),
		cvpro.WithVersioning(*versioned),
		cvpro.WithSaveDelay(*delay),
	)
	if err != nil {
		panic(err)
	}

	// 2. Field edits: one debounced save for the whole burst
	fmt.Printf("Applying %d field edits...\n", *count)
	startSet := time.Now()
	for i := 0; i < *count; i++ {
		ws.Set("summary", fmt.Sprintf("Summary revision %d", i))
	}
	setDuration := time.Since(startSet)

	// 3. Collection edits
	fmt.Printf("Adding and removing %d records...\n", *count)
	startColl := time.Now()
	for i := 0; i < *count; i++ {
		id := fmt.Sprintf("skill-bench-%d", i)
		ws.AddItem(core.KeySkills, core.Node{core.IDField: id, "name": "Bench", "level": i % 100})
		ws.RemoveItem(core.KeySkills, id)
	}
	collDuration := time.Since(startColl)

	// 4. Synchronous saves
	saves := max(1, *count/100)
	fmt.Printf("Running %d synchronous saves...\n", saves)
	startSave := time.Now()
	for i := 0; i < saves; i++ {
		ws.Set("personal.title", fmt.Sprintf("Title %d", i))
		if err := ws.SaveNow(ctx); err != nil {
			panic(err)
		}
	}
	saveDuration := time.Since(startSave)

	if err := ws.Close(ctx); err != nil {
		panic(err)
	}
	state := ws.State().(core.StoreState)
	info, err := os.Stat(filepath.Join(benchDir, "cv.json"))
	if err != nil {
		panic(err)
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d edits, git=%v):\n", *count, *versioned)
	fmt.Printf("  Field edits:      %v (%v/op)\n", setDuration, setDuration/time.Duration(*count))
	fmt.Printf("  Collection edits: %v (%v/op)\n", collDuration, collDuration/time.Duration(2**count))
	fmt.Printf("  Saves:            %v (%v/op)\n", saveDuration, saveDuration/time.Duration(saves))
	fmt.Printf("  Backend writes:   %d\n", state.Saves)
	fmt.Printf("  Document size:    %d bytes\n", info.Size())
	fmt.Printf("--------------------------------------------------\n")
}
