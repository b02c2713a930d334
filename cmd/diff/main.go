package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-exfat-inspector"
)

const versionString = "diff 1.0.0"

type rootParameters struct {
	Positional struct {
		ImageA string `positional-arg-name:"IMAGE_A" description:"File-path of the first exFAT image"`
		ImageB string `positional-arg-name:"IMAGE_B" description:"File-path of the second exFAT image"`
	} `positional-args:"yes" required:"yes"`
}

var (
	rootArguments = new(rootParameters)
)

func exitCodeForError(err error) int {
	cause := err

	if ge, ok := err.(*errors.Error); ok == true {
		cause = ge.Err
	}

	switch cause.(type) {
	case *exfat.InvalidArgumentError:
		return 2
	case *exfat.NotFoundError:
		return 3
	case *exfat.InvalidSuperblockError:
		return 4
	case *exfat.InconsistencyError:
		return 5
	case *exfat.IoError:
		return 6
	default:
		return 1
	}
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" {
			fmt.Println(versionString)
			os.Exit(0)
		}
	}

	defer func() {
		if state := recover(); state != nil {
			err := log.Wrap(state.(error))
			log.PrintError(err)
			os.Exit(exitCodeForError(err))
		}
	}()

	p := flags.NewParser(rootArguments, flags.Default)

	_, err := p.Parse()
	if err != nil {
		os.Exit(1)
	}

	ctx := exfat.NewContextFromEnvironment()

	a, err := exfat.OpenVolume(ctx, rootArguments.Positional.ImageA)
	log.PanicIf(err)

	defer a.Close()

	b, err := exfat.OpenVolume(ctx, rootArguments.Positional.ImageB)
	log.PanicIf(err)

	defer b.Close()

	report, err := exfat.Diff(ctx, a, b)
	log.PanicIf(err)

	if report.HasFindings() == false {
		fmt.Println("images are structurally identical")
		return
	}

	fmt.Fprintln(os.Stderr, report.Combined())
	os.Exit(5)
}
