package jupiter

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"hwboard-backend/lib/htmlutil"
	"hwboard-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func nodeText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return textutil.CollapseWhitespace(htmlutil.RemoveNonPrintable(htmlutil.GetText(sel.Nodes[0])))
}

type classInfo struct {
	name    string
	classId string
	termId  string
}

type todoRow struct {
	dueText     string
	name        string
	description string
	maxPoints   int
}

var gogradesRegex = regexp.MustCompile(`gogrades\((\d+),(\d+)\)`)
var digitsRegex = regexp.MustCompile(`\d+`)

// parseClasses reads the class rows off the To Do page. Each row
// carries the class name in its "big wrap" div and the class/term ids
// in a gogrades(...) click handler.
func parseClasses(body []byte) ([]classInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	var classes []classInfo
	doc.Find(".classbox tr.hi").Each(func(_ int, row *goquery.Selection) {
		name := nodeText(row.Find("div.big.wrap").First())
		if name == "" {
			return
		}

		match := gogradesRegex.FindStringSubmatch(row.AttrOr("click", ""))
		if len(match) < 3 {
			return
		}

		classes = append(classes, classInfo{
			name:    name,
			classId: match[1],
			termId:  match[2],
		})
	})

	return classes, nil
}

// parseTodoRows reads the incomplete assignments off a class page.
// Only rows flagged with the green dot count; the due text sits in the
// second cell, the name and description in the third, the point value
// in the eighth.
func parseTodoRows(body []byte) ([]todoRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	var rows []todoRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find(`td img[src*="dot_green.svg"]`).Length() == 0 {
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 8 {
			return
		}

		nameCell := cells.Eq(2)
		name := nodeText(nameCell.Find("div.big").First())
		if name == "" {
			name = nodeText(nameCell)
		}
		description := nodeText(nameCell.Find("div.small").First())

		maxPoints := 0
		match := digitsRegex.FindString(cells.Eq(7).Text())
		if match != "" {
			points, err := strconv.Atoi(match)
			if err == nil {
				maxPoints = points
			}
		}

		rows = append(rows, todoRow{
			dueText:     strings.TrimSpace(cells.Eq(1).Text()),
			name:        name,
			description: description,
			maxPoints:   maxPoints,
		})
	})

	return rows, nil
}
