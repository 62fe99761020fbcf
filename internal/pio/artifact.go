package pio

import (
	"os"

	"github.com/marcinbor85/gohex"
)

// HexInfo summarizes a parsed Intel HEX image.
type HexInfo struct {
	Bytes    int // total data bytes across all segments
	Segments int
}

// InspectHex parses the firmware image and reports its size. It is a sanity
// check on the local artifact only; the loader remains the authority on what
// it will accept.
func InspectHex(path string) (HexInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return HexInfo{}, err
	}
	defer f.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return HexInfo{}, err
	}

	var info HexInfo
	for _, seg := range mem.GetDataSegments() {
		info.Segments++
		info.Bytes += len(seg.Data)
	}
	return info, nil
}
