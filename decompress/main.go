package main

import (
	"flag"
	"log"
	"os"

	"github.com/fumin/rangecoder"
)

func main() {
	flag.Parse()
	if err := rangecoder.Decompress(os.Stdout, os.Stdin); err != nil {
		log.Fatalf("%v", err)
	}
}
