package diff

import (
	"cmp"
	"slices"
)

// Minimum length of b before the popularity heuristic kicks in.
const autoJunkMinLen = 200

type matcher struct {
	a, b []string

	// b2j maps every token of b to the ascending list of its positions in b. Popular tokens are
	// removed when the popularity heuristic is enabled.
	b2j map[string][]int

	// Scratch space for longest. During the iteration for a[i], j2len[j] is the length of the
	// longest match ending with a[i-1] and b[j].
	j2len, next map[int]int
}

func newMatcher(a, b []string, autoJunk bool) *matcher {
	m := &matcher{
		a:     a,
		b:     b,
		b2j:   make(map[string][]int),
		j2len: make(map[int]int),
		next:  make(map[int]int),
	}
	for j, s := range b {
		m.b2j[s] = append(m.b2j[s], j)
	}
	if n := len(b); autoJunk && n >= autoJunkMinLen {
		ntest := n/100 + 1
		for s, js := range m.b2j {
			if len(js) > ntest {
				delete(m.b2j, s)
			}
		}
	}
	return m
}

// longest finds the longest matching block in a[alo:ahi] and b[blo:bhi]. Of all maximal blocks, it
// returns the one that starts earliest in a, and of those the one that starts earliest in b. If
// there is no matching block, it returns {alo, blo, 0}.
//
// Stripping a common prefix or suffix before searching would change the result: for "ab" and
// "acab" the longest block is "ab" at the end, not "a" at the start.
func (m *matcher) longest(alo, ahi, blo, bhi int) block {
	best := block{alo, blo, 0}

	clear(m.j2len)
	for i := alo; i < ahi; i++ {
		clear(m.next)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := m.j2len[j-1] + 1
			m.next[j] = k
			if k > best.n {
				best = block{i - k + 1, j - k + 1, k}
			}
		}
		m.j2len, m.next = m.next, m.j2len
	}

	// Popular tokens aren't in b2j, extend the block over them on both ends.
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.n++
	}
	for best.i+best.n < ahi && best.j+best.n < bhi && m.a[best.i+best.n] == m.b[best.j+best.n] {
		best.n++
	}
	return best
}

// matchingBlocks returns the matching blocks of a and b in ascending order. Adjacent blocks are
// merged and the list is terminated by the sentinel {len(a), len(b), 0}.
func matchingBlocks(a, b []string, autoJunk bool) []block {
	m := newMatcher(a, b, autoJunk)

	type span struct{ alo, ahi, blo, bhi int }
	var blocks []block
	stack := []span{{0, len(a), 0, len(b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bl := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if bl.n == 0 {
			continue
		}
		blocks = append(blocks, bl)
		if s.alo < bl.i && s.blo < bl.j {
			stack = append(stack, span{s.alo, bl.i, s.blo, bl.j})
		}
		if bl.i+bl.n < s.ahi && bl.j+bl.n < s.bhi {
			stack = append(stack, span{bl.i + bl.n, s.ahi, bl.j + bl.n, s.bhi})
		}
	}
	slices.SortFunc(blocks, func(x, y block) int {
		return cmp.Or(cmp.Compare(x.i, y.i), cmp.Compare(x.j, y.j))
	})

	// Blocks found in different recursion steps can touch each other, merge them.
	merged := make([]block, 0, len(blocks)+1)
	cur := block{}
	for _, bl := range blocks {
		if cur.i+cur.n == bl.i && cur.j+cur.n == bl.j {
			cur.n += bl.n
			continue
		}
		if cur.n > 0 {
			merged = append(merged, cur)
		}
		cur = bl
	}
	if cur.n > 0 {
		merged = append(merged, cur)
	}
	return append(merged, block{len(a), len(b), 0})
}
