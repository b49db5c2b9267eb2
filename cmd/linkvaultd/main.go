package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mowens/linkvault/internal/cli"
)

func main() {
	addr := flag.String("addr", os.Getenv("LINKVAULT_LISTEN_ADDR"), "Listen address (default 127.0.0.1:8632)")
	dbPath := flag.String("db", "", "Database path override (defaults to config)")
	flag.Parse()

	opts := cli.DaemonOptions{
		Addr:   *addr,
		DBPath: *dbPath,
	}

	if err := cli.ServeDaemon(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
