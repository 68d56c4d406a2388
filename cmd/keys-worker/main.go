package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/rationalkeyboard/keys/rpc"
	"github.com/rationalkeyboard/keys/version"
)

func main() {
	address := flag.String("address", rpc.DefaultAddress, "Address to listen on.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	l, err := net.Listen("tcp", *address)
	if err != nil {
		log.Fatal("listen error:", err)
	}
	log.Printf("synthesis worker listening on %v", l.Addr())
	if err := rpc.Serve(l); err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Rational keyboard synthesis worker. Run keys with -worker to use it.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
