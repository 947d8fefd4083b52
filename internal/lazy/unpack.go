package lazy

import (
	"fmt"

	"github.com/funvibe/hintinfer/internal/values"
)

// TooFewValuesError reports an unpack request for more names than the
// elements can provide. It is not fatal: Unpack still returns a padded
// result and the caller decides whether to warn.
type TooFewValuesError struct {
	Want int
	Max  int
}

func (e *TooFewValuesError) Error() string {
	return fmt.Sprintf("need more than %d values to unpack into %d names", e.Max, e.Want)
}

// Unpack distributes the elements of an iteration over n names, the way a
// destructuring assignment binds them. Fixed elements fill one slot each;
// variable-arity elements fill every slot not reserved for the fixed
// elements after them. Missing slots are NoValues.
func Unpack(elems []values.Lazy, n int) ([]values.ValueSet, error) {
	results := make([]values.ValueSet, n)
	for i := range results {
		results[i] = values.NoValues
	}

	total := 0
	slot := 0
	for i, e := range elems {
		lo, hi := e.Bounds()
		total = addArity(total, hi)
		if lo == 1 && hi == 1 {
			if slot < n {
				results[slot] = results[slot].Union(e.Infer())
			}
			slot++
			continue
		}
		reserved := 0
		for _, rest := range elems[i+1:] {
			rmin, _ := rest.Bounds()
			reserved += rmin
		}
		end := n - reserved
		if hi != values.Unbounded && slot+hi < end {
			end = slot + hi
		}
		inferred := e.Infer()
		for j := slot; j < end; j++ {
			results[j] = results[j].Union(inferred)
		}
		slot = max(slot+lo, end)
	}

	if total < n {
		return results, &TooFewValuesError{Want: n, Max: total}
	}
	return results, nil
}

func addArity(a, b int) int {
	if a == values.Unbounded || b == values.Unbounded {
		return values.Unbounded
	}
	return a + b
}
