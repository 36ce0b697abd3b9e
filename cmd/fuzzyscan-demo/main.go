// Command fuzzyscan-demo runs one initial scan and one refinement round
// against either an in-memory mock address space or a live process's
// memory, printing progress-channel snapshots as it goes. It demonstrates
// the library; it is not a session manager.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/orviska/fuzzyscan"
	"github.com/orviska/fuzzyscan/driver/procfs"
	"github.com/orviska/fuzzyscan/progress"
)

func main() {
	fs := flag.NewFlagSet("fuzzyscan-demo", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "Target process ID (Linux only; omit to use a synthetic mock address space)")
	start := fs.Uint64("start", 0x1000, "Region start address")
	end := fs.Uint64("end", 0x100000, "Region end address")
	target := fs.Float64("target", 100, "Value to seed the mock address space with (ignored with -pid)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "fuzzyscan-demo:", err)
		os.Exit(1)
	}

	var driver fuzzyscan.Driver
	if *pid > 0 {
		d, err := procfs.Open(*pid)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fuzzyscan-demo:", err)
			os.Exit(1)
		}
		defer d.Close()
		driver = d
	} else {
		driver = mockAddressSpace(*start, *end, int32(*target))
	}

	ch := progress.New()
	buf := make([]byte, progress.MinLen)
	ch.Attach(buf)

	cfg := fuzzyscan.DefaultScanConfig()
	cfg.Channel = ch

	baseline, err := fuzzyscan.InitialScan(driver, fuzzyscan.I32, *start, *end, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fuzzyscan-demo: initial scan:", err)
		os.Exit(1)
	}
	printSnapshot("initial scan", ch.Snapshot())
	fmt.Printf("baseline candidates: %d\n", baseline.Len())

	rcfg := fuzzyscan.DefaultRefineConfig()
	rcfg.Channel = ch

	refined, err := fuzzyscan.Refine(driver, baseline.Items(), fuzzyscan.ConditionUnchanged(), rcfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fuzzyscan-demo: refine:", err)
		os.Exit(1)
	}
	printSnapshot("refine (unchanged)", ch.Snapshot())
	fmt.Printf("survivors: %d\n", refined.Len())
}

func printSnapshot(label string, s progress.Snapshot) {
	fmt.Printf("[%s] status=%d progress=%d%% regions_done=%d found=%d\n",
		label, s.Status, s.Progress, s.RegionsDone, s.FoundCount)
}

// mockAddressSpace builds a MockDriver covering [start, end) filled with a
// repeating little-endian i32 pattern of value, for demonstration without a
// real target process.
func mockAddressSpace(start, end uint64, value int32) *fuzzyscan.MockDriver {
	size := int(end - start)
	data := make([]byte, size)
	for i := 0; i+4 <= size; i += 4 {
		data[i] = byte(value)
		data[i+1] = byte(value >> 8)
		data[i+2] = byte(value >> 16)
		data[i+3] = byte(value >> 24)
	}
	return fuzzyscan.NewMockDriver(start, data)
}
