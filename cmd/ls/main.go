package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/go-errors/errors"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-exfat-inspector"
)

const versionString = "ls 1.0.0"

type rootParameters struct {
	Positional struct {
		Image string `positional-arg-name:"IMAGE" description:"File-path of exFAT image"`
		Path  string `positional-arg-name:"PATH" description:"Path within the image (forward slashes)"`
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

	v, err := exfat.OpenVolume(ctx, rootArguments.Positional.Image)
	log.PanicIf(err)

	defer v.Close()

	ide, found, err := v.Stat(rootArguments.Positional.Path)
	log.PanicIf(err)

	if found == true {
		if fdf, ok := ide.PrimaryEntry.(*exfat.ExfatFileDirectoryEntry); ok == true && fdf.FileAttributes.IsDirectory() == false {
			printEntry(ide.Extra["complete_filename"].(string), ide)
			return
		}
	}

	names, err := v.List(rootArguments.Positional.Path)
	log.PanicIf(err)

	for _, name := range names {
		childIde, found, err := v.Stat(joinPath(rootArguments.Positional.Path, name))
		log.PanicIf(err)

		if found == true {
			printEntry(name, childIde)
		}
	}
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "/" {
		return "/" + name
	}

	return dir + "/" + name
}

func printEntry(name string, ide exfat.IndexedDirectoryEntry) {
	fdf := ide.PrimaryEntry.(*exfat.ExfatFileDirectoryEntry)

	kind := "-"
	if fdf.FileAttributes.IsDirectory() == true {
		kind = "d"
	}

	var size uint64

	for _, secondary := range ide.SecondaryEntries {
		if sede, ok := secondary.(*exfat.ExfatStreamExtensionDirectoryEntry); ok == true {
			size = sede.ValidDataLength
		}
	}

	fmt.Printf("%s %10s %s %s\n", kind, humanize.Bytes(size), fdf.LastModifiedTimestamp().Format("2006-01-02 15:04:05"), name)
}
