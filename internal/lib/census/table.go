package census

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// notReported is the token the API uses for a suppressed estimate.
const notReported = "-"

// table is the API's response shape: a header row followed by value rows.
// Cells are usually strings but may be numbers or null.
type table [][]any

func decodeTable(body []byte) (table, error) {
	var t table
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, err
	}
	return t, nil
}

// valueRow returns the single data row of a one-geography query, checking
// it has at least width cells. More than one data row is malformed.
func (t table) valueRow(width int) ([]any, error) {
	if len(t) < 2 {
		return nil, ErrNoData
	}
	if len(t) > 2 {
		return nil, fmt.Errorf("got %d value rows, want 1", len(t)-1)
	}
	row := t[1]
	if len(row) < width {
		return nil, fmt.Errorf("value row has %d columns, want at least %d", len(row), width)
	}
	return row, nil
}

// cellCount converts a cell into a non-negative count.
//
// reported is false for null, "-" and the negative annotation values the
// ACS uses in place of suppressed estimates.
func cellCount(cell any) (n int, reported bool, err error) {
	switch v := cell.(type) {
	case nil:
		return 0, false, nil
	case string:
		s := strings.TrimSpace(v)
		if s == notReported {
			return 0, false, nil
		}
		n, err = strconv.Atoi(s)
		if err != nil {
			return 0, false, fmt.Errorf("invalid count %q", v)
		}
	case float64:
		if v != math.Trunc(v) {
			return 0, false, fmt.Errorf("invalid count %v", v)
		}
		n = int(v)
	default:
		return 0, false, fmt.Errorf("unexpected cell type %T", cell)
	}

	if n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}
