package main

import (
	"fmt"
	"os"
)

/*
logger gates the progress messages of commands: a false logger drops
every message, a true one writes them to STDERR, one per line.
*/
type logger bool

func (l logger) Logf(format string, a ...interface{}) {
	if l {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	}
}
