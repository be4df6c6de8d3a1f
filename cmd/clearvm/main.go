// Command clearvm is the thin CLI collaborator spec.md places outside the
// VM core: it reads a bytecode file named as its single positional
// argument and hands it to the core, exiting non-zero on any core error
// (spec §6).
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Luminiscental/clearvm/pkg/vm"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <bytecode-file>\n", os.Args[0])
		os.Exit(1)
	}

	path := os.Args[1]
	buf, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read bytecode file")
		os.Exit(1)
	}

	if err := vm.Execute(buf, vm.WithOutput(os.Stdout), vm.WithLogger(log)); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
