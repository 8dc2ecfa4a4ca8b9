// Package diff aligns two token sequences and describes the result as a list of opcodes.
//
// The default alignment repeatedly takes the longest common contiguous block of both sequences and
// recurses into the remainders to the left and right of it (Ratcliff/Obershelp). That is not
// guaranteed to produce a minimal edit script, but the result tends to look like what a human would
// consider the change. A Myers alignment is available as an alternative, see [Myers].
package diff

import "fmt"

// Op describes the kind of an opcode.
//
//   - Equal: a[I1:I2] == b[J1:J2]
//   - Insert: b[J1:J2] is inserted at a[I1], I1 == I2
//   - Replace: a[I1:I2] is replaced by b[J1:J2]
//   - Delete: a[I1:I2] is deleted, J1 == J2
//
//go:generate go run golang.org/x/tools/cmd/stringer -type=Op -linecomment
type Op int

const (
	Equal   Op = iota // equal
	Insert            // insert
	Replace           // replace
	Delete            // delete
)

func (op Op) valid() bool { return op >= Equal && op <= Delete }

// ParseOp returns the Op with the given name.
func ParseOp(name string) (Op, error) {
	for op := Equal; op <= Delete; op++ {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown op %q", name)
}

func (op Op) MarshalText() ([]byte, error) {
	if !op.valid() {
		return nil, fmt.Errorf("invalid op %s", op)
	}
	return []byte(op.String()), nil
}

func (op *Op) UnmarshalText(b []byte) error {
	v, err := ParseOp(string(b))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// Opcode describes one contiguous segment of an alignment between a and b.
type Opcode struct {
	Op Op  `json:"op"`
	I1 int `json:"i1"` // Range in a
	I2 int `json:"i2"`
	J1 int `json:"j1"` // Range in b
	J2 int `json:"j2"`
}

// Option configures the alignment.
type Option func(*options)

type options struct {
	myers    bool
	autoJunk bool
}

// Myers selects Myers' algorithm instead of the longest matching block alignment. The result is a
// minimal edit script, but blocks of repeated tokens may be aligned differently.
func Myers() Option {
	return func(o *options) { o.myers = true }
}

// AutoJunk enables or disables the popularity heuristic of the longest matching block alignment.
// It is enabled by default: if b has at least 200 tokens, tokens that make up more than 1% of b
// don't start a matching block on their own, they are only matched when adjacent to another match.
// This keeps frequent tokens like "the" or "," from fragmenting the alignment of long texts.
func AutoJunk(enabled bool) Option {
	return func(o *options) { o.autoJunk = enabled }
}

// Algorithm names accepted by [ByName].
const (
	NameGreedy = "greedy"
	NameMyers  = "myers"
)

// ByName returns the option selecting the algorithm with the given name. The empty name selects the
// default longest matching block alignment.
func ByName(name string) (Option, error) {
	switch name {
	case "", NameGreedy:
		return nil, nil
	case NameMyers:
		return Myers(), nil
	default:
		return nil, fmt.Errorf("unknown diff algorithm %q", name)
	}
}

// Opcodes aligns a and b and returns the opcodes that turn a into b.
//
// The opcodes partition both a and b: The first opcode starts at I1 == J1 == 0, every following
// opcode starts where the previous one ended, and the last one ends at len(a) and len(b). Two
// adjacent opcodes are never both Equal. If both inputs are empty, the result is empty.
func Opcodes(a, b []string, opts ...Option) []Opcode {
	o := options{autoJunk: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}

	if o.myers {
		return myers(a, b)
	}
	return opcodesFromBlocks(matchingBlocks(a, b, o.autoJunk))
}

// Similarity returns a measure of the similarity of the aligned sequences in the range [0, 1],
// twice the number of matched tokens divided by the total number of tokens. Two empty sequences are
// considered identical.
func Similarity(ops []Opcode) float64 {
	if len(ops) == 0 {
		return 1
	}
	matches := 0
	for _, op := range ops {
		if op.Op == Equal {
			matches += op.I2 - op.I1
		}
	}
	last := ops[len(ops)-1]
	return 2 * float64(matches) / float64(last.I2+last.J2)
}

// block is a matching block, a[i:i+n] == b[j:j+n].
type block struct {
	i, j, n int
}

// opcodesFromBlocks converts a sorted list of non-adjacent matching blocks that ends with the
// sentinel {len(a), len(b), 0} into opcodes.
func opcodesFromBlocks(blocks []block) []Opcode {
	var ops []Opcode
	i, j := 0, 0
	for _, bl := range blocks {
		switch {
		case i < bl.i && j < bl.j:
			ops = append(ops, Opcode{Replace, i, bl.i, j, bl.j})
		case i < bl.i:
			ops = append(ops, Opcode{Delete, i, bl.i, j, bl.j})
		case j < bl.j:
			ops = append(ops, Opcode{Insert, i, bl.i, j, bl.j})
		}
		i, j = bl.i+bl.n, bl.j+bl.n
		if bl.n > 0 {
			ops = append(ops, Opcode{Equal, bl.i, i, bl.j, j})
		}
	}
	return ops
}
