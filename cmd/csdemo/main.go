/*

csdemo is a small CLI over the csdemo/parser package: given a demo file, it
prints a summary (map, duration, player count, event/entity-update counts)
and, with -events or -entities, dumps the corresponding record stream.

*/

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/csdemo-go/csdemo/parser"
)

func main() {
	events := flag.Bool("events", false, "dump every demo event (game events, ticks, server and rank messages) as JSON")
	entities := flag.Bool("entities", false, "dump every entity update as JSON")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: csdemo [-events] [-entities] <demo-file>")
		os.Exit(2)
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("csdemo: %v", err)
	}

	out, err := parser.ParseAll(buf)
	if err != nil {
		log.Fatalf("csdemo: %v", err)
	}

	if *events {
		dump(out.Events)
		return
	}
	if *entities {
		dump(out.EntityStates)
		return
	}

	printSummary(out)
}

func printSummary(out *parser.FirstPassOutput) {
	if out.Header != nil {
		fmt.Printf("map:        %s\n", out.Header.MapName)
		fmt.Printf("server:     %s\n", out.Header.ServerName)
	}
	if out.Info != nil {
		fmt.Printf("duration:   %.1fs (%d ticks)\n", out.Info.PlaybackTime, out.Info.PlaybackTicks)
	}
	fmt.Printf("players:     %d\n", len(out.PlayerInfo))
	fmt.Printf("events:      %d\n", len(out.Events))
	fmt.Printf("entity ticks:%d (%d updates)\n", len(out.EntityStates), out.EntityStates.StateCount())
}

func dump(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("csdemo: %v", err)
	}
}
