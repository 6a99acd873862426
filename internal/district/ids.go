package district

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"rostergen/internal/config"
)

// Entity kinds with their identifier prefixes.
const (
	kindSchool  = "school"
	kindTeacher = "teacher"
	kindStaff   = "staff"
	kindStudent = "student"
	kindSection = "section"
)

var kindPrefix = map[string]string{
	kindSchool:  "SCH",
	kindTeacher: "TCH",
	kindStaff:   "STF",
	kindStudent: "STU",
	kindSection: "SEC",
}

// Block is a reserved identifier range handed to one generation call.
// Because every slice and every school gets its own block, identifiers
// cannot collide across calls even though the generator has no memory.
type Block struct {
	Kind  string
	Style string
	Tag   string // constant prefix, e.g. "D1-TCH"
	Start int    // sequential only: first number in the block
	N     int
}

// Describe renders the instruction text for the generator.
func (b Block) Describe(field string) string {
	if b.Style == config.IDStyleHighEntropy {
		return fmt.Sprintf("every %s must start with %q followed by 10 random uppercase alphanumeric characters with no sequential or repeating patterns", field, b.Tag+"-")
	}
	return fmt.Sprintf("%s values must be taken from %s through %s, zero-padded, each used at most once", field, b.seq(0), b.seq(b.N-1))
}

func (b Block) seq(i int) string {
	return fmt.Sprintf("%s-%06d", b.Tag, b.Start+i)
}

// Contains reports whether id belongs to this block.
func (b Block) Contains(id string) bool {
	rest, ok := strings.CutPrefix(id, b.Tag+"-")
	if !ok {
		return false
	}
	if b.Style == config.IDStyleHighEntropy {
		if len(rest) < 6 {
			return false
		}
		for _, r := range rest {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return false
			}
		}
		return true
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return false
	}
	return n >= b.Start && n < b.Start+b.N
}

// ID returns the i-th identifier of the block for locally synthesized
// records. High-entropy blocks draw fresh random suffixes instead.
func (b Block) ID(i int) string {
	if b.Style == config.IDStyleHighEntropy {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
		return b.Tag + "-" + suffix
	}
	return b.seq(i)
}

// Allocator carves disjoint identifier blocks for one district. Sequential
// blocks are numbered from a per-district base so sibling districts cannot
// collide either.
type Allocator struct {
	style string
	tag   func(kind string) string
	next  map[string]int
}

// NewAllocator returns an allocator for the given district index (1-based).
func NewAllocator(style string, districtIndex int) *Allocator {
	base := districtIndex * 100000
	next := make(map[string]int, len(kindPrefix))
	for kind := range kindPrefix {
		next[kind] = base + 1001
	}
	return &Allocator{
		style: style,
		tag: func(kind string) string {
			return fmt.Sprintf("D%d-%s", districtIndex, kindPrefix[kind])
		},
		next: next,
	}
}

// Reserve consumes a block of n identifiers for kind.
func (a *Allocator) Reserve(kind string, n int) Block {
	start := a.next[kind]
	a.next[kind] = start + n
	return Block{
		Kind:  kind,
		Style: a.style,
		Tag:   a.tag(kind),
		Start: start,
		N:     n,
	}
}
