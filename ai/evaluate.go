package ai

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kazanlab/toguz/toguz"
)

// Weights parameterise the static evaluator. The score for side is
//
//	Store*(own store - their store) ± Tuz per claimed tuz + Stones*(own row - their row)
//
// where row counts exclude tuz pits.
type Weights struct {
	Store  float64
	Tuz    float64
	Stones float64
}

var DefaultWeights = Weights{
	Store:  1,
	Tuz:    5,
	Stones: 0.1,
}

func MakeEvaluator(w *Weights) EvaluationFunc {
	return func(p *toguz.Position, side toguz.Side) float64 {
		return evaluate(w, p, side)
	}
}

var DefaultEvaluate = MakeEvaluator(&DefaultWeights)

// Evaluate scores p from side's point of view with DefaultWeights.
func Evaluate(p *toguz.Position, side toguz.Side) float64 {
	return evaluate(&DefaultWeights, p, side)
}

func evaluate(w *Weights, p *toguz.Position, side toguz.Side) float64 {
	opp := side.Flip()
	score := w.Store * float64(p.Store(side)-p.Store(opp))
	if _, ok := p.Tuz(side); ok {
		score += w.Tuz
	}
	if _, ok := p.Tuz(opp); ok {
		score -= w.Tuz
	}
	score += w.Stones * float64(p.RowStones(side)-p.RowStones(opp))
	return score
}

// ExplainScore writes the terms of the evaluation for both sides.
func ExplainScore(out io.Writer, w *Weights, p *toguz.Position) {
	tw := tabwriter.NewWriter(out, 4, 8, 1, '\t', 0)
	fmt.Fprintf(tw, "\twhite\tblack\n")
	fmt.Fprintf(tw, "store\t%d\t%d\n", p.Store(toguz.White), p.Store(toguz.Black))
	fmt.Fprintf(tw, "row\t%d\t%d\n", p.RowStones(toguz.White), p.RowStones(toguz.Black))
	tuz := func(s toguz.Side) string {
		if t, ok := p.Tuz(s); ok {
			return fmt.Sprintf("%d", t)
		}
		return "-"
	}
	fmt.Fprintf(tw, "tuz\t%s\t%s\n", tuz(toguz.White), tuz(toguz.Black))
	fmt.Fprintf(tw, "score\t%.1f\t%.1f\n",
		evaluate(w, p, toguz.White), evaluate(w, p, toguz.Black))
	tw.Flush()
}
