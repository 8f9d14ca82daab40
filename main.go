package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/facette/natsort"
	"github.com/wildstyl3r/openbeam/internal/config"
	"github.com/wildstyl3r/openbeam/internal/model"
	"github.com/wildstyl3r/openbeam/internal/utils"
)

type result struct {
	name string
	row  []string
	err  error
}

func runExperiment(name string, parameters config.ExperimentParameters, dataFlags model.DataFlags) result {
	m, err := model.NewModel(parameters)
	if err != nil {
		return result{name: name, err: err}
	}
	if err := m.Run(); err != nil {
		return result{name: name, err: err}
	}
	extractor := model.NewDataExtractor(m)
	if err := extractor.Save(name, dataFlags); err != nil {
		return result{name: name, err: err}
	}
	return result{name: name, row: extractor.SummaryRow(name)}
}

func main() {
	dataFlags := model.NewDataFlags(flag.CommandLine)
	var configFileNamePointer = flag.String("input", "setups", "experiment configuration in toml format")
	var verbose = flag.Bool("v", false, "log every step of every experiment")
	var threads = flag.Int("threads", runtime.NumCPU(), "experiments simulated in parallel")
	flag.Parse()

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	configFileName := strings.TrimSuffix(*configFileNamePointer, ".toml")
	cfg, meta, err := config.LoadConfig(configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("ignoring unknown keys: %v", undecoded)
	}

	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dataFlags.SetOutputPath(cfg.OutputDir)
	}

	names := make([]string, 0, len(cfg.Experiments))
	for name := range cfg.Experiments {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return natsort.Compare(names[i], names[j]) })

	jobs := make(chan string)
	results := make(chan result)
	var wg sync.WaitGroup
	for n, workers := 0, max(*threads, 1); n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				parameters := cfg.Experiments[name]
				if err := parameters.CheckAndUnify(name, &cfg, &meta); err != nil {
					results <- result{name: name, err: err}
					continue
				}
				parameters.SetVerbosity(*verbose)
				results <- runExperiment(name, parameters, dataFlags)
			}
		}()
	}

	go func() {
		for _, name := range names {
			jobs <- name
		}
		close(jobs)
	}()

	// chan killer
	go func() {
		wg.Wait()
		close(results)
	}()

	var summary utils.CSV
	counter := 0
	fmt.Printf("\rDone:[0/%d]", len(names))
	for r := range results {
		counter++
		fmt.Printf("\rDone:[%d/%d]", counter, len(names))
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "\nexperiment %s skipped: %v\n", r.name, r.err)
			continue
		}
		summary = append(summary, r.row)
	}
	fmt.Println()

	if len(summary) > 0 {
		if err := utils.WriteAsCSV(summary, dataFlags.GetOutputPath(), "", "summary", model.SummaryHeader(cfg.OutputUnits)); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
}
