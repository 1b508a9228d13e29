package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/labmigrate/core"
)

// dedupeAxisLabels keeps only the first label of Benchling table axis cells,
// which render the same header value twice.
func dedupeAxisLabels(dom *goquery.Document) {
	dom.Find("td").Each(func(_ int, td *goquery.Selection) {
		wrapper := td.Find("div.mediocre-tableEditable-axisCell-labelWrapper").First()
		if wrapper.Length() == 0 {
			return
		}
		first := wrapper.Children().First()
		if first.Length() == 0 {
			return
		}
		td.SetText(first.Text())
	})
}

func removeStyleTags(dom *goquery.Document) {
	dom.Find("style").Remove()
}

func removeTableWrappers(dom *goquery.Document) {
	dom.Find("div.mediocre-tableEditable-fillerTableWrapper").Remove()
}

// pruneEmptyRows deletes rows whose cells after the first are all blank, but
// only in tables with more than threshold rows. Smaller tables are kept as-is.
func pruneEmptyRows(dom *goquery.Document, threshold int) []core.PrunedTable {
	var pruned []core.PrunedTable
	dom.Find("table").Each(func(i int, table *goquery.Selection) {
		rows := ownRows(table)
		total := rows.Length()
		if total <= threshold {
			return
		}
		deleted := 0
		rows.Each(func(_ int, row *goquery.Selection) {
			if rowIsBlank(row) {
				row.Remove()
				deleted++
			}
		})
		pruned = append(pruned, core.PrunedTable{Index: i, Rows: total, Deleted: deleted})
	})
	return pruned
}

// ownRows returns the rows of table, excluding rows of nested tables.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// rowIsBlank reports whether every cell after the first is empty. A row with a
// single cell is blank by definition.
func rowIsBlank(row *goquery.Selection) bool {
	cells := row.ChildrenFiltered("td, th")
	if cells.Length() <= 1 {
		return true
	}
	blank := true
	cells.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if strings.TrimSpace(cell.Text()) != "" {
			blank = false
		}
		return blank
	})
	return blank
}
