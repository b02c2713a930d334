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

const versionString = "stat 1.0.0"

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

	path := rootArguments.Positional.Path

	ide, found, err := v.Stat(path)
	log.PanicIf(err)

	if found == false {
		fmt.Fprintf(os.Stderr, "not found: %s\n", path)
		os.Exit(3)
	}

	fdf := ide.PrimaryEntry.(*exfat.ExfatFileDirectoryEntry)
	filename := ide.Extra["complete_filename"].(string)

	fdf.ValidateTimestamps(ctx, filename)

	fmt.Printf("Name: %s\n", filename)
	fmt.Printf("Attributes: %s\n", fdf.FileAttributes)
	fmt.Printf("Created: %s\n", fdf.CreateTimestamp())
	fmt.Printf("Modified: %s\n", fdf.LastModifiedTimestamp())
	fmt.Printf("Accessed: %s\n", fdf.LastAccessedTimestamp())

	clusterSize := uint64(v.Reader().SectorsPerCluster()) * uint64(v.Reader().SectorSize())

	for _, secondary := range ide.SecondaryEntries {
		if sede, ok := secondary.(*exfat.ExfatStreamExtensionDirectoryEntry); ok == true {
			fmt.Printf("Size: %s\n", humanize.Bytes(sede.ValidDataLength))
			fmt.Printf("Cluster Count: %d\n", (sede.DataLength+clusterSize-1)/clusterSize)
			fmt.Printf("First Cluster: %d\n", sede.FirstCluster)
			fmt.Printf("NoFatChain: %v\n", sede.GeneralSecondaryFlags.NoFatChain())
		}
	}

	if fdf.FileAttributes.IsDirectory() == false {
		ratio, err := v.Fragmentation(path)
		log.PanicIf(err)

		fmt.Printf("Fragmentation: %.8f%%\n", ratio)
	}
}
