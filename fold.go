package calib

import (
	"fmt"
	"math/rand"
	"sort"
)

// Fold holds the index sets for one cross-validation fold. Test is the
// held-out group; Train is its complement.
type Fold struct {
	Train []int
	Test  []int
}

// KFold partitions n sample indices into folds disjoint held-out groups
// drawn from a permutation of rng. Every index is held out exactly once;
// group sizes differ by at most one.
func KFold(n, folds int, rng *rand.Rand) ([]Fold, error) {
	if folds < 2 || folds > n {
		return nil, fmt.Errorf("%w: %d folds for %d samples", ErrBadFoldCount, folds, n)
	}

	perm := rng.Perm(n)

	perFold := n / folds
	remainder := n % folds

	out := make([]Fold, folds)
	idx := 0
	for f := 0; f < folds; f++ {
		size := perFold
		if f < remainder {
			size++
		}
		out[f].Test = append([]int(nil), perm[idx:idx+size]...)
		out[f].Train = make([]int, 0, n-size)
		out[f].Train = append(out[f].Train, perm[:idx]...)
		out[f].Train = append(out[f].Train, perm[idx+size:]...)
		idx += size
	}

	sortFolds(out)
	return out, nil
}

// StratifiedKFold partitions indices into folds held-out groups with each
// label's samples spread as evenly as possible across groups.
func StratifiedKFold(labels []int, folds int, rng *rand.Rand) ([]Fold, error) {
	n := len(labels)
	if folds < 2 || folds > n {
		return nil, fmt.Errorf("%w: %d folds for %d samples", ErrBadFoldCount, folds, n)
	}

	// Group indices by label, preserving input order within each label.
	byLabel := make(map[int][]int)
	var classes []int
	for i, y := range labels {
		if _, ok := byLabel[y]; !ok {
			classes = append(classes, y)
		}
		byLabel[y] = append(byLabel[y], i)
	}
	sort.Ints(classes)

	// Shuffle each label's indices, then deal them round-robin into groups.
	// The dealing offset rotates per label so small classes do not all land
	// in the low-numbered folds.
	test := make([][]int, folds)
	offset := 0
	for _, y := range classes {
		idxs := byLabel[y]
		rng.Shuffle(len(idxs), func(a, b int) { idxs[a], idxs[b] = idxs[b], idxs[a] })
		for j, i := range idxs {
			f := (j + offset) % folds
			test[f] = append(test[f], i)
		}
		offset = (offset + len(idxs)) % folds
	}

	out := make([]Fold, folds)
	inTest := make([]int, n)
	for f := range test {
		for _, i := range test[f] {
			inTest[i] = f
		}
	}
	for f := 0; f < folds; f++ {
		out[f].Test = test[f]
		out[f].Train = make([]int, 0, n-len(test[f]))
		for i := 0; i < n; i++ {
			if inTest[i] != f {
				out[f].Train = append(out[f].Train, i)
			}
		}
	}

	sortFolds(out)
	return out, nil
}

// sortFolds orders indices within each group so fold identity does not
// depend on permutation order. Reproducibility comes from the seed alone.
func sortFolds(folds []Fold) {
	for f := range folds {
		sort.Ints(folds[f].Test)
		sort.Ints(folds[f].Train)
	}
}

// gather copies the selected rows and labels out of the full set.
func gather(probs [][]float64, labels []int, idxs []int) ([][]float64, []int) {
	p := make([][]float64, len(idxs))
	y := make([]int, len(idxs))
	for j, i := range idxs {
		p[j] = probs[i]
		y[j] = labels[i]
	}
	return p, y
}
