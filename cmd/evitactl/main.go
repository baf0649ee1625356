// Command evitactl manages the query-shape log of evita clients.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(openPgPool).Execute(); err != nil {
		os.Exit(1)
	}
}
