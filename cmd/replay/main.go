package main

// #region imports
import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/agroplan/crop-advisor/go-agent/internal/replay"
)

// #endregion

// #region main

func main() {
	verbose := flag.Bool("v", false, "print questions and final result per fixture")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay [-v] fixture.json [fixture.json ...]")
		os.Exit(2)
	}

	ctx := context.Background()
	failed := 0

	for _, path := range paths {
		fixture, err := replay.LoadFixture(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}

		res, err := replay.Replay(ctx, fixture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}

		mismatches := replay.Verify(fixture, res)
		if len(mismatches) > 0 {
			fmt.Printf("FAIL %s (%s)\n", path, fixture.Description)
			for _, m := range mismatches {
				fmt.Printf("  - %s\n", m)
			}
			failed++
			continue
		}

		fmt.Printf("PASS %s (%s)\n", path, fixture.Description)
		if *verbose {
			for i, q := range res.Questions {
				fmt.Printf("  q%d: %s\n", i+1, q)
			}
			if res.Final != nil {
				fmt.Printf("  %s\n", res.Final.Recommendation)
			}
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d fixtures failed\n", failed, len(paths))
		os.Exit(1)
	}
}

// #endregion main
