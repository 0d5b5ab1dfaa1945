package xlsx

import "strconv"

// CellRef converts a 0-based column index and 1-based row number into a
// spreadsheet cell reference: (0,1) -> "A1", (26,1) -> "AA1".
//
// Column labels are not plain base-26: after each division the quotient is
// decremented by one, because "A" acts as both 0 in the first position and
// 1 in higher positions. Dropping the adjustment produces wrong labels for
// every column past "Z".
func CellRef(col, row int) string {
	var label []byte
	c := col
	for c >= 0 {
		label = append([]byte{byte('A' + c%26)}, label...)
		c = c/26 - 1
	}
	return string(label) + strconv.Itoa(row)
}
