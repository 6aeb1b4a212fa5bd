package viewer

import (
	"fmt"
	"math"

	"github.com/ricochet2200/go-disk-usage/du"
)

const KB = uint64(1024)
const MB = KB * KB
const GB = KB * KB * KB
const TB = GB * KB

func SpaceString(s uint64) string {
	switch {
	case s == math.MaxUint64:
		return "???"
	case s >= 1000*GB:
		return fmt.Sprintf("%0.2f TiB", float64(s)/float64(TB))
	case s >= GB:
		return fmt.Sprintf("%d GiB", s/GB)
	}
	return fmt.Sprintf("%d MiB", s/MB)
}

func diskSpaceAvailable(path string) uint64 {
	return du.NewDiskUsage(path).Available()
}
