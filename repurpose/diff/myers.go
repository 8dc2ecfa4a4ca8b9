package diff

import zdiff "znkr.io/diff"

// myers aligns a and b with Myers' algorithm and folds the per-token edits into opcodes. Deletions
// and insertions between two matches become a single Replace.
func myers(a, b []string) []Opcode {
	var ops []Opcode
	i, j := 0, 0   // position after the last emitted opcode
	di, dj := 0, 0 // pending deletions and insertions

	flush := func() {
		switch {
		case di > 0 && dj > 0:
			ops = append(ops, Opcode{Replace, i, i + di, j, j + dj})
		case di > 0:
			ops = append(ops, Opcode{Delete, i, i + di, j, j})
		case dj > 0:
			ops = append(ops, Opcode{Insert, i, i, j, j + dj})
		default:
			return
		}
		i += di
		j += dj
		di, dj = 0, 0
	}

	for _, e := range zdiff.Edits(a, b) {
		switch e.Op {
		case zdiff.Match:
			flush()
			if n := len(ops); n > 0 && ops[n-1].Op == Equal {
				ops[n-1].I2++
				ops[n-1].J2++
			} else {
				ops = append(ops, Opcode{Equal, i, i + 1, j, j + 1})
			}
			i++
			j++
		case zdiff.Delete:
			di++
		case zdiff.Insert:
			dj++
		}
	}
	flush()
	return ops
}
