package board_test

import (
	"testing"

	"github.com/herohde/monochess/pkg/board"
	"github.com/herohde/monochess/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonotonicHashDecreasesOnCapture(t *testing.T) {
	before, _, _, _, err := fen.Decode("4k3/8/8/3q4/4R3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	after, _, _, _, err := fen.Decode("4k3/8/8/3R4/8/8/8/4K3 w - - 0 1") // Rxd5
	require.NoError(t, err)

	assert.True(t, after.MonotonicHash().Less(before.MonotonicHash()))
}

func TestMonotonicHashDecreasesOnPawnAdvance(t *testing.T) {
	before, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)
	after, _, _, _, err := fen.Decode("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.True(t, after.MonotonicHash().Less(before.MonotonicHash()))
}

func TestMonotonicHashDecreasesOnCastlingRightsLoss(t *testing.T) {
	before, _, _, _, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	after, _, _, _, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1")
	require.NoError(t, err)

	assert.True(t, after.MonotonicHash().Less(before.MonotonicHash()))
	assert.Equal(t, before.MonotonicHash(), before.MonotonicHash())
}

func TestMonotonicHashDecreasesOnEnPassantConsumption(t *testing.T) {
	before, _, _, _, err := fen.Decode("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	require.NoError(t, err)
	after, _, _, _, err := fen.Decode("4k3/8/8/3pP3/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.True(t, after.MonotonicHash().Less(before.MonotonicHash()))
}

func TestMonotonicHashStableUnderNonProgress(t *testing.T) {
	a, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, a.MonotonicHash(), b.MonotonicHash())
	assert.True(t, a.MonotonicHash().LessEq(b.MonotonicHash()))
}

func TestMonotonicHashDigestIsLow32Bits(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	h := pos.MonotonicHash()
	assert.Equal(t, uint32(h.Lo), h.Digest())
}

func TestPieceKeyDecreasesWhenMaterialIsCaptured(t *testing.T) {
	pos, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
		{Square: board.D4, Color: board.White, Piece: board.Queen},
	}, 0, 0)
	require.NoError(t, err)

	without, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}, 0, 0)
	require.NoError(t, err)

	assert.True(t, without.MonotonicHash().Less(pos.MonotonicHash()))
}
