package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/scala"
	"github.com/rationalkeyboard/keys/version"
)

func main() {
	radius := flag.Float64("radius", 0, "Lattice radius. By default, the radius of the configuration is used.")
	configFile := flag.String("config", "", "Overlay the configuration with `file`.")
	name := flag.String("name", "Rational Keyboard", "Name of the scale.")
	templateFile := flag.String("t", "", "Use a custom template `file` named scale.scl instead of the built-in one.")
	output := flag.String("o", "", "Write to `file` instead of standard output.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if err := run(*radius, *configFile, *name, *templateFile, *output); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(radius float64, configFile, name, templateFile, output string) error {
	if radius == 0 {
		var files []string
		if configFile != "" {
			files = append(files, configFile)
		}
		config, err := keys.LoadConfig(files...)
		if err != nil {
			return fmt.Errorf("could not load config: %v", err)
		}
		radius = config.Harmony.Radius
	}
	lattice, err := keys.Ball(radius)
	if err != nil {
		return err
	}
	var exporter *scala.Exporter
	if templateFile != "" {
		exporter, err = scala.NewFromTemplate(templateFile)
	} else {
		exporter, err = scala.New()
	}
	if err != nil {
		return err
	}
	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("could not create %v: %v", output, err)
		}
		defer f.Close()
		w = f
	}
	return exporter.Export(w, scala.NewScale(name, radius, lattice))
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Exports the rational keyboard lattice as a Scala tuning.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
