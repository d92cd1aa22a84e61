package search

import (
	"unsafe"

	"github.com/corvane-chess/corvane/pkg/board"
	"github.com/corvane-chess/corvane/pkg/eval"
)

// Flag records whether a stored score is exact or a fail-high/fail-low bound from a
// cutoff.
type Flag int8

const (
	Exact Flag = 0
	Alpha Flag = -1
	Beta  Flag = 1
)

// ttAssoc is the number of entries probed per bucket before falling back to replacement.
const ttAssoc = 4

// emptyDepth marks an unused slot; no real search ever reaches this depth.
const emptyDepth = -32768

// TTEntry is one transposition table slot, sized to pack tightly: 24 bytes.
type TTEntry struct {
	Key   uint64
	Depth int16
	Score int32
	Flag  Flag
	Age   uint8
	Best  uint16
}

func emptyEntry() TTEntry {
	return TTEntry{Depth: emptyDepth}
}

// TranspositionTable is a fixed-size, bucketed (set-associative) hash table mapping
// position hashes to search results. Entries age out via a generation counter bumped once
// per iterative-deepening iteration, so stale entries from earlier, shallower searches
// lose replacement priority to fresh ones even at equal depth.
type TranspositionTable struct {
	buckets [][ttAssoc]TTEntry
	mask    uint64
	age     uint8
}

// NewTranspositionTable allocates a table sized to the largest power-of-two bucket count
// that fits within mb megabytes.
func NewTranspositionTable(mb int) *TranspositionTable {
	if mb <= 0 {
		mb = 1
	}
	entrySize := int(unsafe.Sizeof(TTEntry{}))
	if entrySize < 1 {
		entrySize = 1
	}
	budget := mb * 1024 * 1024
	totalEntries := budget / entrySize
	if totalEntries < ttAssoc {
		totalEntries = ttAssoc
	}
	buckets := totalEntries / ttAssoc
	if buckets < 1 {
		buckets = 1
	}

	pow2 := 1
	for (pow2 << 1) <= buckets {
		pow2 <<= 1
	}

	t := &TranspositionTable{
		buckets: make([][ttAssoc]TTEntry, pow2),
		mask:    uint64(pow2 - 1),
	}
	for i := range t.buckets {
		for j := range t.buckets[i] {
			t.buckets[i][j] = emptyEntry()
		}
	}
	return t
}

func (t *TranspositionTable) index(hash board.ZobristHash) uint64 {
	return uint64(hash) & t.mask
}

// NewSearch bumps the table's generation counter; called once per iterative-deepening
// iteration so store's replacement policy can tell fresh entries from stale ones.
func (t *TranspositionTable) NewSearch() {
	t.age++
}

// Probe returns the deepest entry keyed by hash, if any.
func (t *TranspositionTable) Probe(hash board.ZobristHash) (TTEntry, bool) {
	bucket := &t.buckets[t.index(hash)]

	var best TTEntry
	found := false
	for _, e := range bucket {
		if e.Key == uint64(hash) && e.Depth > emptyDepth {
			if !found || e.Depth > best.Depth {
				best = e
				found = true
			}
		}
	}
	return best, found
}

// Store records a search result for hash. An existing entry for the same key is always
// overwritten; otherwise the shallowest (oldest on a depth tie) slot in the bucket is
// evicted.
func (t *TranspositionTable) Store(hash board.ZobristHash, depth int, score eval.Score, flag Flag, best board.Move) {
	bucket := &t.buckets[t.index(hash)]
	key := uint64(hash)

	fresh := TTEntry{
		Key:   key,
		Depth: int16(depth),
		Score: int32(score),
		Flag:  flag,
		Age:   t.age,
		Best:  board.PackMove(best),
	}

	for i := range bucket {
		if bucket[i].Key == key {
			bucket[i] = fresh
			return
		}
	}

	replaceAt := 0
	for j, e := range bucket {
		r := bucket[replaceAt]
		worseDepth := e.Depth < r.Depth
		sameDepthOlder := e.Depth == r.Depth && int8(r.Age-e.Age) > 0
		if worseDepth || sameDepthOlder {
			replaceAt = j
		}
	}
	bucket[replaceAt] = fresh
}

// Size returns the table's allocated size in bytes.
func (t *TranspositionTable) Size() uint64 {
	return uint64(len(t.buckets)) * ttAssoc * uint64(unsafe.Sizeof(TTEntry{}))
}
