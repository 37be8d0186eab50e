package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// GroceriesCSV is a small extract in the layout of the groceries dataset.
// Grouped by (member, date) it yields six baskets:
//
//	1808 21-07-2015: tropical fruit, whole milk, yogurt
//	2552 05-01-2015: rolls/buns, whole milk
//	2300 19-09-2015: pip fruit
//	1187 12-12-2015: rolls/buns, whole milk, yogurt
//	3037 01-02-2015: other vegetables, whole milk
//	4941 14-02-2015: rolls/buns, soda
const GroceriesCSV = `Member_number,Date,itemDescription
1808,21-07-2015,tropical fruit
1808,21-07-2015,whole milk
1808,21-07-2015,yogurt
1808,21-07-2015,whole milk
2552,05-01-2015,whole milk
2552,05-01-2015,rolls/buns
2300,19-09-2015,pip fruit
1187,12-12-2015,rolls/buns
1187,12-12-2015,whole milk
1187,12-12-2015,yogurt
3037,01-02-2015,other vegetables
3037,01-02-2015,whole milk
4941,14-02-2015,rolls/buns
4941,14-02-2015,soda
`

// WriteGroceriesCSV writes GroceriesCSV into a temp dir and returns its path
func WriteGroceriesCSV(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "groceries.csv", GroceriesCSV)
}

// WriteFile writes content to name inside a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
