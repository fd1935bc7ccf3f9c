// Command qdpp runs the dining philosophers example to completion on the
// console, reporting each philosopher's final feed count. A direct
// analogue of qdpp.py's __main__ block, minus its optparse flags (cmd
// flags cover the same ground below).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qpact/qpact"
	"github.com/qpact/qpact/examples/dining"
)

func main() {
	count := flag.Int("count", 5, "number of philosophers")
	maxFeed := flag.Int("maxfeed", 10, "meals per philosopher before stopping")
	tick := flag.Duration("tick", 10*time.Millisecond, "framework tick interval")
	flag.Parse()

	fw := qpact.NewFramework()
	table := dining.NewTable(*count)
	table.Status = func(philNum int, status string) {
		fmt.Printf("%4d philosopher %2d: %s\n", fw.GetTime(), philNum, status)
	}
	if err := table.Start(fw, 1, 64); err != nil {
		fmt.Fprintln(os.Stderr, "qdpp:", err)
		os.Exit(1)
	}

	philosophers := make([]*dining.Philosopher, *count)
	for i := range philosophers {
		philosophers[i] = dining.NewPhilosopher(table, i, *maxFeed)
		if err := philosophers[i].Start(fw, i+2, 64); err != nil {
			fmt.Fprintln(os.Stderr, "qdpp:", err)
			os.Exit(1)
		}
	}

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			fw.Tick()
		}
	}()

	for _, p := range philosophers {
		<-p.Done()
	}
	<-table.Done()

	fmt.Println("exiting...")
	for i, p := range philosophers {
		fmt.Printf("philosopher %2d ate %d meals\n", i, p.FeedCount())
	}
}
