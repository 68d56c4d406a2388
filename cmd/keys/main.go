package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"gioui.org/app"
	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/cmd"
	"github.com/rationalkeyboard/keys/harmony"
	"github.com/rationalkeyboard/keys/keyboard"
	"github.com/rationalkeyboard/keys/keyboard/gioui"
	"github.com/rationalkeyboard/keys/oto"
	"github.com/rationalkeyboard/keys/synth"
	"github.com/rationalkeyboard/keys/version"
)

var configFile = flag.String("config", "", "overlay the configuration with `file`")
var style = flag.String("style", "", "keyboard style: thermal, flow, piano or wedges")
var worker = flag.String("worker", "", "synthesize in the keys-worker listening at `address` instead of in-process")
var defaultMidiInput = flag.String("midi-input", "", "connect MIDI input to matching device name prefix")
var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var versionFlag = flag.Bool("v", false, "Print version.")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	config, err := keys.LoadConfig(files...)
	if err != nil {
		log.Fatal("could not load config: ", err)
	}
	if *style != "" {
		config.Keyboard.Style = *style
	}
	var f *os.File
	if *cpuprofile != "" {
		f, err = os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
	}
	logger := keys.StdLogger{}
	h, err := harmony.New(config.Harmony, logger)
	if err != nil {
		log.Fatal(err)
	}
	audioContext, err := oto.NewContext(config.Synth.SampleRate)
	if err != nil {
		log.Fatal(err)
	}
	synthEngine, err := synth.NewEngine(h.Lattice(), config.Synth, h, audioContext, cmd.Dialer(*worker), logger)
	if err != nil {
		log.Fatal(err)
	}
	kb, err := keyboard.New(h, synthEngine, config, logger)
	if err != nil {
		log.Fatal(err)
	}
	midiContext := cmd.NewMidiContext(kb, len(h.Lattice()), logger)
	if isFlagPassed("midi-input") {
		if err := midiContext.Open(*defaultMidiInput); err != nil {
			log.Printf("failed to open MIDI input '%s': %v", *defaultMidiInput, err)
		}
	}
	window, err := gioui.NewWindow(kb, h.Lattice(), config.Keyboard, synthEngine, logger)
	if err != nil {
		log.Fatal(err)
	}
	h.Start()
	if err := synthEngine.Start(); err != nil {
		log.Fatal(err)
	}

	go func() {
		err := window.Main()
		synthEngine.Stop()
		h.Stop()
		midiContext.Close()
		audioContext.Close()
		if *cpuprofile != "" {
			pprof.StopCPUProfile()
			f.Close()
		}
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
