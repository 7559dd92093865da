// Package layout arranges labels into a fixed-column grid and renders the
// grid as an HTML page sized to the paper.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for layout.
var (
	ErrInvalidColumns   = errors.New("invalid column count")
	ErrInvalidRemainder = errors.New("invalid remainder policy")
	ErrTemplate         = errors.New("page template failed")
)

// Remainder selects what happens to the items that do not fill a last row.
type Remainder string

const (
	// RemainderDrop renders only full rows. Trailing items are not shown.
	RemainderDrop Remainder = "drop"
	// RemainderKeep renders trailing items in a partial last row.
	RemainderKeep Remainder = "keep"
)

// ParseRemainder validates a policy name. Empty selects RemainderDrop.
func ParseRemainder(name string) (Remainder, error) {
	switch Remainder(strings.ToLower(name)) {
	case "", RemainderDrop:
		return RemainderDrop, nil
	case RemainderKeep:
		return RemainderKeep, nil
	}
	return "", fmt.Errorf("%w: %q (must be drop or keep)", ErrInvalidRemainder, name)
}

// ValidateColumns checks a column count.
func ValidateColumns(columns int) error {
	if columns < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidColumns, columns)
	}
	return nil
}

// Pack tiles items row-major into rows of columns items: row i, column j
// holds items[i*columns+j]. Each row is a fresh slice.
func Pack[T any](items []T, columns int, policy Remainder) ([][]T, error) {
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	n := len(items) / columns
	switch policy {
	case "", RemainderDrop:
	case RemainderKeep:
		if len(items)%columns != 0 {
			n++
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRemainder, policy)
	}

	rows := make([][]T, 0, n)
	for i := range n {
		start := i * columns
		end := min(start+columns, len(items))
		row := make([]T, end-start)
		copy(row, items[start:end])
		rows = append(rows, row)
	}
	return rows, nil
}

// Dropped reports how many trailing items Pack leaves out.
func Dropped(count, columns int, policy Remainder) int {
	if columns < 1 || policy == RemainderKeep {
		return 0
	}
	return count % columns
}
