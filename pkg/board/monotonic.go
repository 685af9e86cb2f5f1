package board

import "fmt"

// MonotonicHash is a 128-bit value that identifies the equivalence class of a position
// formed by its material and pawn structure. Unlike the Zobrist hash, it does not depend
// on the side to move, castling move-order or repetition count: it decreases (never
// increases) along any chess-legal trajectory, since material loss, pawn advances,
// captures, promotions, castling-rights loss and en-passant-right consumption can only
// shrink it. This makes it suitable for bulk-evicting whole classes of positions that
// can no longer transpose back into an earlier point in the game.
//
// Layout (bit 0 = least significant):
//
//	 0–16   white piece key (rooks, knights, bishops, queens; no pawns, no king)
//	17–33   black piece key
//	34–37   castling rights (4 bits, lost only)
//	38–44   en passant target + 1, or 0 if none (7 bits)
//	45–127  combined pawn-placement combinatorial index (58 bits used)
type MonotonicHash struct {
	Hi, Lo uint64
}

// Less reports whether h is strictly less than o, treating (Hi,Lo) as an unsigned
// 128-bit integer.
func (h MonotonicHash) Less(o MonotonicHash) bool {
	if h.Hi != o.Hi {
		return h.Hi < o.Hi
	}
	return h.Lo < o.Lo
}

// LessEq reports whether h <= o.
func (h MonotonicHash) LessEq(o MonotonicHash) bool {
	return h == o || h.Less(o)
}

// Digest returns the low 32 bits of the hash. This is the lossy projection used to key
// the outer map: distinct monotonic hashes may share a digest.
func (h MonotonicHash) Digest() uint32 {
	return uint32(h.Lo)
}

func (h MonotonicHash) String() string {
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

// orInto ORs value, treated as occupying bits [shift, shift+64), into h. value itself
// must fit in 64 bits; shift may range over the full 128-bit width.
func orInto(h *MonotonicHash, value uint64, shift uint) {
	if shift >= 64 {
		h.Hi |= value << (shift - 64)
		return
	}
	h.Lo |= value << shift
	h.Hi |= value >> (64 - shift)
}

const pawnRankSquares = 48 // ranks 2-7: squares that are not promotion-eligible.

// comb[n][k] is the binomial coefficient C(n,k) for n in [0,48], k in [0,8]. Entries
// with k > n are left at their zero value, which is the correct C(n,k).
var comb [pawnRankSquares + 1][9]uint64

// pawnCombinations is S = sum_{k=0..8} C(48,k): the number of subsets of size <= 8 of
// the 48 non-promotion squares. Both per-side raw pawn indices range over [0, S).
var pawnCombinations uint64

// whiteOrder and blackOrder list the 48 non-promotion squares in "closest to own
// promotion rank first" order, so that a more advanced pawn set produces a larger raw
// combinatorial index (and hence, after reversal, a smaller one).
var whiteOrder, blackOrder [pawnRankSquares]Square

var lightSquares, darkSquares Bitboard

func init() {
	for n := 0; n <= pawnRankSquares; n++ {
		comb[n][0] = 1
		for k := 1; k <= 8 && k <= n; k++ {
			comb[n][k] = comb[n-1][k-1]
			if k <= n-1 {
				comb[n][k] += comb[n-1][k]
			}
		}
	}
	for k := 0; k <= 8; k++ {
		pawnCombinations += comb[pawnRankSquares][k]
	}

	i := 0
	for r := int(Rank7); r >= int(Rank2); r-- {
		for f := FileH; f <= FileA; f++ {
			whiteOrder[i] = NewSquare(f, Rank(r))
			i++
		}
	}
	i = 0
	for r := int(Rank2); r <= int(Rank7); r++ {
		for f := FileH; f <= FileA; f++ {
			blackOrder[i] = NewSquare(f, Rank(r))
			i++
		}
	}

	for sq := ZeroSquare; sq < NumSquares; sq++ {
		// Files are numbered from H, so H1 (file 0, rank 0) is a light square.
		if (int(sq.File())+int(sq.Rank()))%2 == 0 {
			lightSquares |= BitMask(sq)
		} else {
			darkSquares |= BitMask(sq)
		}
	}
}

// rawPawnIndex computes the raw combinatorial-number-system rank of the pawns bitboard,
// restricted to count pawns walked in the given promotion-proximity order.
func rawPawnIndex(pawns Bitboard, order *[pawnRankSquares]Square, count int) uint64 {
	var idx uint64
	for k := count + 1; k <= 8; k++ {
		idx += comb[pawnRankSquares][k]
	}

	remaining := count
	for i, sq := range order {
		if remaining == 0 {
			break
		}
		if pawns.IsSet(sq) {
			idx += comb[pawnRankSquares-1-i][remaining]
			remaining--
		}
	}
	return idx
}

func pieceKey(p *Position, c Color) uint64 {
	rooks := uint64(p.Piece(c, Rook).PopCount())
	knights := uint64(p.Piece(c, Knight).PopCount())
	bishops := p.Piece(c, Bishop)
	light := uint64((bishops & lightSquares).PopCount())
	dark := uint64((bishops & darkSquares).PopCount())
	queens := uint64(p.Piece(c, Queen).PopCount())

	return rooks + 11*knights + 121*light + 1210*dark + 12100*queens
}

// MonotonicHash computes the monotonic hash of the position. See MonotonicHash (the
// type) for the bit layout and the monotonicity guarantee.
func (p *Position) MonotonicHash() MonotonicHash {
	var h MonotonicHash

	pieces := pieceKey(p, White) | pieceKey(p, Black)<<17
	orInto(&h, pieces, 0)
	orInto(&h, uint64(p.Castling()), 34)

	var ep uint64
	if sq, ok := p.EnPassant(); ok {
		ep = uint64(sq) + 1
	}
	orInto(&h, ep, 38)

	whitePawns := p.Piece(White, Pawn)
	blackPawns := p.Piece(Black, Pawn)

	// Per-side reversed index: a more-advanced or smaller pawn set has a larger raw
	// combinatorial index and thus a smaller R, so R decreases monotonically along
	// any chess-legal trajectory.
	whiteR := pawnCombinations - rawPawnIndex(whitePawns, &whiteOrder, whitePawns.PopCount())
	blackR := pawnCombinations - rawPawnIndex(blackPawns, &blackOrder, blackPawns.PopCount())

	// Radix-S packing of the two independent R values: a decrease of either R
	// decreases the combined value.
	combined := pawnCombinations*blackR + whiteR
	orInto(&h, combined, 45)

	return h
}
