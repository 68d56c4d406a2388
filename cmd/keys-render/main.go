package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rationalkeyboard/keys"
	"github.com/rationalkeyboard/keys/oto"
	"github.com/rationalkeyboard/keys/render"
	"github.com/rationalkeyboard/keys/version"
)

func main() {
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output the .wav files. The directory and its parents are created if needed. By default, the files are placed in the working directory.")
	configFile := flag.String("config", "", "Overlay the configuration with `file`.")
	play := flag.Bool("p", false, "Play the rendered performances instead of writing them.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	config, err := keys.LoadConfig(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	var audioContext *oto.Context
	if *play {
		audioContext, err = oto.NewContext(config.Synth.SampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
		defer audioContext.Close()
	}
	logger := keys.StdLogger{}
	process := func(filename string) error {
		input, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		performance, err := render.Parse(input)
		if err != nil {
			return err
		}
		samples, err := render.Render(performance, config, logger)
		if err != nil {
			return err
		}
		if *play {
			wave, err := keys.EncodeWave(samples, config.Synth.SampleRate)
			if err != nil {
				return err
			}
			if err := audioContext.Play(wave); err != nil {
				return err
			}
			time.Sleep(time.Duration(performance.Length() * float64(time.Second)))
			return nil
		}
		dir := *directory
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		_, name := filepath.Split(filename)
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".wav"
		return writeWav(filepath.Join(dir, name), samples, config.Synth.SampleRate)
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

// writeWav writes the samples as 16-bit mono PCM, clipping to [-1, 1].
func writeWav(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %v: %v", path, err)
	}
	defer f.Close()
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(32767 * min(1, max(-1, v))))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("could not write %v: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not write %v: %v", path, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Renders rational keyboard performances (.yml/.json) to .wav files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
