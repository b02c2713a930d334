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

const versionString = "statfs 1.0.0"

type rootParameters struct {
	Positional struct {
		Image string `positional-arg-name:"IMAGE" description:"File-path of exFAT image"`
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

	er := v.Reader()
	br := er.ActiveBootRegion()

	clusterSize := uint64(er.SectorsPerCluster()) * uint64(er.SectorSize())
	volumeSize := br.VolumeLength * uint64(er.SectorSize())

	fmt.Printf("Volume Label: %s\n", v.Label())
	fmt.Printf("Volume Size: %s\n", humanize.Bytes(volumeSize))
	fmt.Printf("Sector Size: %s\n", humanize.Bytes(uint64(er.SectorSize())))
	fmt.Printf("Cluster Size: %s\n", humanize.Bytes(clusterSize))
	fmt.Printf("Cluster Count: %d\n", br.ClusterCount)
	fmt.Printf("FAT Offset: %d\n", br.FatOffset)
	fmt.Printf("FAT Length: %d\n", br.FatLength)
	fmt.Printf("Cluster Heap Offset: %d\n", br.ClusterHeapOffset)
	fmt.Printf("Number Of FATs: %d\n", br.NumberOfFats)

	if br.PercentInUse <= 100 {
		fmt.Printf("Percent In Use: %d%%\n", br.PercentInUse)
	}
}
