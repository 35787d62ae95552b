package valueobjects

import (
	"hash/fnv"
	"math"
)

const (
	// MinNodeWeight is the floor of the derived node weight
	MinNodeWeight = 6
	// MaxNodeWeight is the ceiling of the derived node weight
	MaxNodeWeight = 40
)

// ComputeWeight derives a node's display weight from its content length and
// its count of substantive outgoing links. The curve grows quickly for short
// articles, flattens across mid-sized ones, and tops out logarithmically so a
// handful of mega-articles do not dwarf the rest of the graph.
//
// Deterministic and pure: same inputs always produce the same weight.
func ComputeWeight(contentLength, linkCount int) int {
	if contentLength < 0 {
		contentLength = 0
	}
	if linkCount < 0 {
		linkCount = 0
	}

	length := float64(contentLength)

	var weight float64
	switch {
	case contentLength < 500:
		weight = MinNodeWeight + length/500*8
	case contentLength < 2000:
		weight = MinNodeWeight + 8 + (length-500)/1500*12
	case contentLength < 10000:
		weight = MinNodeWeight + 20 + (length-2000)/8000*12
	default:
		weight = MinNodeWeight + 32 + math.Min(8, math.Log(length/10000)*4)
	}

	weight += linkBonus(linkCount)

	clamped := math.Min(MaxNodeWeight, math.Max(MinNodeWeight, weight))
	return int(math.Round(clamped))
}

// linkBonus rewards well-connected articles: nothing below ten links, linear
// growth up to fifty, then a capped logarithmic tail.
func linkBonus(linkCount int) float64 {
	count := float64(linkCount)
	switch {
	case linkCount <= 10:
		return 0
	case linkCount < 50:
		return (count - 10) / 40 * 6
	default:
		return 6 + math.Min(4, math.Log(count/50)*3)
	}
}

// ColorSeed derives a stable presentation seed from a node id. Pure function
// of the id so the same article always renders with the same hue.
func ColorSeed(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32()
}
