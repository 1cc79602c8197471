package board

import (
	"math"

	"github.com/samber/lo"
)

// NumMetrics is the length of a metrics vector.
const NumMetrics = 5

// Metrics are the normalized positional features of one color.
type Metrics struct {
	// Material is (own - opposing) / (own + opposing), men 1 and kings 2.
	Material float64
	// Advancement is the negated mean distance of men to their promotion
	// row, over height-1.
	Advancement float64
	// Centrality is the negated mean Manhattan distance to the center, over
	// (width+height)/2.
	Centrality float64
	// Threats counts opposing pieces diagonally adjacent to own pieces, over
	// 4 per own piece.
	Threats float64
	// Reach counts opposing pieces exactly two diagonal steps away, over 4
	// per own piece.
	Reach float64
}

// Vector returns the metrics in weight order.
func (m Metrics) Vector() []float64 {
	return []float64{m.Material, m.Advancement, m.Centrality, m.Threats, m.Reach}
}

// Metrics computes the positional metrics for color.
func (b *Board) Metrics(color Player) Metrics {
	var m Metrics
	own := lo.PickBy(b.squares, func(_ Location, p Piece) bool {
		return p.OwnedBy(color)
	})
	if len(own) == 0 {
		if b.NumPieces(color.Opponent()) > 0 {
			m.Material = -1
		}
		return m
	}

	ownMat, oppMat := 0, 0
	for _, p := range b.squares {
		if p.OwnedBy(color) {
			ownMat += p.Material()
		} else {
			oppMat += p.Material()
		}
	}
	m.Material = float64(ownMat-oppMat) / float64(ownMat+oppMat)

	promo := b.PromotionRow(color)
	menRows := lo.FilterMapToSlice(own, func(loc Location, p Piece) (float64, bool) {
		return math.Abs(float64(loc.Y - promo)), !p.IsKing()
	})
	if len(menRows) > 0 && b.height > 1 {
		m.Advancement = -lo.Mean(menRows) / float64(b.height-1)
	}

	cx := float64(b.width-1) / 2
	cy := float64(b.height-1) / 2
	dists := lo.MapToSlice(own, func(loc Location, _ Piece) float64 {
		return math.Abs(float64(loc.X)-cx) + math.Abs(float64(loc.Y)-cy)
	})
	m.Centrality = -lo.Mean(dists) / (float64(b.width+b.height) / 2)

	threats, reach := 0, 0
	opp := color.Opponent()
	for loc := range own {
		for _, d := range moveTables[KingMoves] {
			if p, ok := b.squares[loc.Add(d)]; ok && p.OwnedBy(opp) {
				threats++
			}
			if p, ok := b.squares[loc.Jump(d)]; ok && p.OwnedBy(opp) {
				reach++
			}
		}
	}
	denom := float64(4 * len(own))
	m.Threats = float64(threats) / denom
	m.Reach = float64(reach) / denom
	return m
}
