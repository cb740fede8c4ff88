package sequence

// Move removes the element at from and reinserts it at to, returning a new
// slice. It reports false and returns items unchanged when the indices are
// equal or either one is out of range.
func Move[T any](items []T, from, to int) ([]T, bool) {
	if from == to || from < 0 || to < 0 || from >= len(items) || to >= len(items) {
		return items, false
	}
	moved := items[from]
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, true
}
