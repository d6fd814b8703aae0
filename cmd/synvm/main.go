// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/synvm/cpu"
	"github.com/ezrec/synvm/emulator"
	"github.com/ezrec/synvm/translate"
)

// defineFlag collects repeated -D NAME=VALUE flags.
type defineFlag map[string]string

func (df defineFlag) String() string {
	var defs []string
	for name, value := range df {
		defs = append(defs, fmt.Sprintf("%v=%v", name, value))
	}
	return strings.Join(defs, ",")
}

func (df defineFlag) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok {
		value = "1"
	}
	df[name] = value
	return nil
}

func main() {
	var source string
	var save string
	var input string
	var output string
	var verbose bool
	var lang string
	defines := defineFlag{}

	flag.StringVar(&source, "a", "", ".asm file to assemble")
	flag.StringVar(&save, "s", "", "Save assembled image to file, do not execute")
	flag.StringVar(&input, "i", "-", "Terminal input")
	flag.StringVar(&output, "o", "-", "Terminal output")
	flag.Var(defines, "D", "Assembler define NAME=VALUE (repeatable)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "L", "", "Message language, as a BCP 47 tag")

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	if len(lang) != 0 {
		translate.SetLanguage(lang)
	}
	if verbose {
		log.Printf("%v: messages in %v", os.Args[0], translate.Language())
	}

	image := "challenge.bin"
	if flag.NArg() == 1 {
		image = flag.Arg(0)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(source) != 0 {
		// Assemble a new program image.
		inf, err := os.Open(source)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range emu.Defines() {
			asm.Predefine(name, value)
		}
		for name, value := range defines {
			asm.Predefine(name, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		emu.Rom.SetWords(emu.Program.Words())
	} else if image == "-" {
		_, err := emu.Rom.ReadFrom(os.Stdin)
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	} else {
		err := emu.Rom.Unmarshal(os.DirFS(filepath.Dir(image)), filepath.Base(image))
		if err != nil {
			log.Fatalf("%v: %v", image, err)
		}
	}

	if len(save) != 0 {
		if emu.Program == nil {
			log.Fatalf("%v: -s requires -a", os.Args[0])
		}
		ouf, err := os.Create(save)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		defer ouf.Close()
		err = emu.Rom.Marshal(ouf)
		if err != nil {
			log.Fatalf("%v: %v", save, err)
		}
		return
	}

	if input == "-" {
		emu.Terminal.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Terminal.Input = inf
	}

	if output == "-" {
		emu.Terminal.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Terminal.Output = ouf
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", image, err)
	}

	err = emu.Run()
	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("%v: halted after %d ticks", image, emu.Ticks())
	}
}
