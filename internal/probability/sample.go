package probability

import (
	"errors"
	"math/big"
	"math/rand/v2"
)

// ErrNoData is returned when sampling from a table with no positive weight. It means
// the model never observed the attribute being asked for.
var ErrNoData = errors.New("no data to sample from")

// Sample draws one key from t with probability proportional to its weight.
func Sample[K comparable](t *Table[K], rng *rand.Rand) (K, error) {
	var zero K

	total := t.Sum()
	if total.Sign() <= 0 {
		return zero, ErrNoData
	}

	target := new(big.Rat).SetFloat64(rng.Float64())
	target.Mul(target, total)

	var (
		picked K
		found  bool
		last   K
		cum    = new(big.Rat)
	)
	t.Each(func(k K, w *big.Rat) {
		if found || w.Sign() <= 0 {
			return
		}
		last = k
		cum.Add(cum, w)
		if cum.Cmp(target) > 0 {
			picked, found = k, true
		}
	})
	if !found {
		// Only reachable through float rounding of the draw; take the last live key.
		return last, nil
	}
	return picked, nil
}
