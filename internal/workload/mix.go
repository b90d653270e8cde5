package workload

import (
	"errors"
	"math/rand/v2"

	"github.com/yndnr/stripedmap-go/internal/config"
)

// picker chooses operations in proportion to their weights.
type picker struct {
	ops   []string
	cumul []int
	total int
}

func newPicker(m config.MixSection) (picker, error) {
	var p picker
	for _, w := range []struct {
		op     string
		weight int
	}{
		{OpInsert, m.Insert},
		{OpErase, m.Erase},
		{OpGet, m.Get},
		{OpUpdate, m.Update},
		{OpVisit, m.Visit},
		{OpBulk, m.Bulk},
	} {
		if w.weight <= 0 {
			continue
		}
		p.total += w.weight
		p.ops = append(p.ops, w.op)
		p.cumul = append(p.cumul, p.total)
	}
	if p.total == 0 {
		return picker{}, errors.New("workload: operation mix is empty")
	}
	return p, nil
}

func (p picker) pick(rng *rand.Rand) string {
	n := rng.IntN(p.total)
	for i, c := range p.cumul {
		if n < c {
			return p.ops[i]
		}
	}
	return p.ops[len(p.ops)-1]
}
