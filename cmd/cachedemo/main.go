// cachedemo exercises the transposition cache against a FEN position, without
// depending on move generation or evaluation. See: https://www.chessprogramming.org/Transposition_Table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/monochess/pkg/board"
	"github.com/herohde/monochess/pkg/board/fen"
	"github.com/herohde/monochess/pkg/cache"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var (
	position = flag.String("fen", "", "Position to probe/insert (default to standard)")
	sizeMB   = flag.Uint("mb", 16, "Cache size in megabytes")
	depth    = flag.Int("depth", 6, "Depth to record for the inserted entry")
	score    = flag.Int("score", 0, "Score in centipawns to record for the inserted entry")
	prune    = flag.Uint("prune-digest", 0, "If nonzero, prune equivalence classes above this monotonic-hash digest")
	version  = flag.Bool("version", false, "Print build version and exit")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: cachedemo [options]

cachedemo inserts and probes a position in a transposition cache.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	if *version {
		fmt.Println(build.Version())
		return
	}

	f := resolveFEN(*position)

	pos, turn, _, _, err := decodeFEN(f)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen %q: %v", f, err)
	}

	zt := board.NewZobristTable(1)
	b := board.NewBoard(zt, pos, turn)

	tc := cache.New[cache.SearchPayload](*sizeMB)

	var depthLimit lang.Optional[int8]
	if *depth > 0 {
		depthLimit = lang.Some(int8(*depth))
	}
	d := int8(1) // default depth when -depth is left at or below zero.
	if v, ok := depthLimit.V(); ok {
		d = v
	}

	payload := cache.NewSearchPayload(d, 0, 0, int16(*score), cache.Exact)
	tc.Insert(b, payload)
	logw.Infof(ctx, "inserted %v at %v (zobrist=%x, monotonic=%v)", payload, f, b.Zobrist(), b.MonotonicHash())

	if got, ok := tc.Probe(b); ok {
		logw.Infof(ctx, "probe hit: depth=%v score=%v bound=%v", got.Depth(), got.ScoreAt(0), got.Bound)
	} else {
		logw.Infof(ctx, "probe miss")
	}

	if *prune > 0 {
		tc.PruneUnreachable(uint32(*prune))
		logw.Infof(ctx, "pruned classes above digest %v", *prune)
	}

	logw.Infof(ctx, "size_bytes=%v hash_full=%v/1000", tc.SizeBytes(), tc.HashFull())
}

func resolveFEN(f string) string {
	if f == "" {
		return fen.Initial
	}
	return f
}

func decodeFEN(f string) (*board.Position, board.Color, int, int, error) {
	return fen.Decode(f)
}
