package cache

// Payload is the data stored in a transposition-cache entry. Depth reports the search
// depth the entry was computed at and drives the bucket's depth-preferred replacement
// policy. The zero value of an implementing type must represent "no data" (depth 0),
// since an all-zero bucket slot is defined to be unused: Go gives us this for free,
// so there is no separate default() constructor in this port.
type Payload interface {
	Depth() int8
}

// Bound indicates how a stored score relates to the true minimax value of the
// position it was computed for.
type Bound uint8

const (
	NoBound Bound = iota
	Exact
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "none"
	}
}

// CheckmateValue is the score magnitude reported for an immediate checkmate.
// CheckmateThreshold is the boundary above (below) which a score is considered a
// mate-in-N rather than a material/positional evaluation.
const (
	CheckmateValue     int16 = 30000
	CheckmateThreshold int16 = CheckmateValue - 1000
)

// SearchPayload is the payload cached for an alpha-beta search result: a best move,
// its score and bound, and the depth it was searched to.
//
// Score is stored normalized to the root rather than to the ply at which it was
// found: a mate score's distance is measured from the position actually stored in
// the table, not from wherever the search happens to probe it back from next time.
// NewSearchPayload folds the search ply in on write; ScoreAt reverses it on read.
// Without this, a mate found 3 plies deep and later transposed-into 1 ply deep would
// report the wrong distance to mate.
type SearchPayload struct {
	depth int8
	Move  uint16 // compact encoding; see board.Move.Compact.
	Score int16
	Bound Bound
}

// NewSearchPayload returns a search result payload for the given depth, normalizing
// a mate score found at ply plies from the root.
func NewSearchPayload(depth int8, ply int8, move uint16, score int16, bound Bound) SearchPayload {
	return SearchPayload{depth: depth, Move: move, Score: normalizeMateScore(score, ply), Bound: bound}
}

func (p SearchPayload) Depth() int8 {
	return p.depth
}

// ScoreAt reverses the root-normalization applied by NewSearchPayload, returning the
// score as it applies to a probe happening at ply plies from the root.
func (p SearchPayload) ScoreAt(ply int8) int16 {
	return denormalizeMateScore(p.Score, ply)
}

func normalizeMateScore(score int16, ply int8) int16 {
	switch {
	case score > CheckmateThreshold:
		return score + int16(ply)
	case score < -CheckmateThreshold:
		return score - int16(ply)
	default:
		return score
	}
}

func denormalizeMateScore(score int16, ply int8) int16 {
	switch {
	case score > CheckmateThreshold:
		return score - int16(ply)
	case score < -CheckmateThreshold:
		return score + int16(ply)
	default:
		return score
	}
}

// PerftPayload is the payload cached for a perft (leaf node count) computation.
type PerftPayload struct {
	depth int8
	Nodes uint64
}

// NewPerftPayload returns a perft payload for the given depth.
func NewPerftPayload(depth int8, nodes uint64) PerftPayload {
	return PerftPayload{depth: depth, Nodes: nodes}
}

func (p PerftPayload) Depth() int8 {
	return p.depth
}
