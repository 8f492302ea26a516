package classroom

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"hwboard-backend/lib/htmlutil"
	"hwboard-backend/lib/textutil"
	"hwboard-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// nodeText pulls the visible text out of the first node of a
// selection, cleaned the way scraped portal strings need to be.
func nodeText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return textutil.CollapseWhitespace(htmlutil.RemoveNonPrintable(htmlutil.GetText(sel.Nodes[0])))
}

type listingItem struct {
	name  string
	class string
	url   string
}

type assignmentDetails struct {
	dueText     string
	description string
	maxPoints   int
}

var (
	pointsRegex = regexp.MustCompile(`(\d+)\s+[Pp]oints`)
	dueRegex    = regexp.MustCompile(`(?i)Due\s*([^,\n]+)(?:,\s*([^,\n]+))?`)
	// a due value like "8:30 AM" with no date part means today
	timeOnlyRegex  = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s*(AM|PM)$`)
	zeroScoreRegex = regexp.MustCompile(`\b0\s*/`)
)

// parseListing walks every anchor whose href ends in "details". Each
// carries the assignment name and course name as its first two <p>
// tags. With doneOnlyMissing set, an item only counts when its list
// row is marked not turned in, missing, or scored 0.
func parseListing(body []byte, baseUrl *url.URL, doneOnlyMissing bool) ([]listingItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	var items []listingItem
	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href := anchor.AttrOr("href", "")
		if !strings.HasSuffix(href, "details") {
			return
		}

		link, err := url.Parse(href)
		if err != nil {
			return
		}
		full := baseUrl.ResolveReference(link).String()

		var name, class string
		paragraphs := anchor.Find("p")
		if paragraphs.Length() >= 2 {
			name = nodeText(paragraphs.Eq(0))
			class = nodeText(paragraphs.Eq(1))
		}

		if doneOnlyMissing && !isDoneButMissing(anchor) {
			return
		}

		if name == "" {
			// hidden rows sometimes have no <p> structure at all
			text := nodeText(anchor)
			if text == "" {
				return
			}
			name = text
			if class == "" {
				class = "Unknown"
			}
		}

		items = append(items, listingItem{
			name:  name,
			class: class,
			url:   full,
		})
	})

	return items, nil
}

func isDoneButMissing(anchor *goquery.Selection) bool {
	row := anchor.Closest("li")
	if row.Length() == 0 {
		return false
	}
	text := strings.ToLower(nodeText(row))
	return strings.Contains(text, "not turned in") ||
		strings.Contains(text, "missing") ||
		zeroScoreRegex.MatchString(text)
}

func parseDetails(body []byte) (assignmentDetails, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return assignmentDetails{}, err
	}

	var details assignmentDetails

	instructions := doc.Find("div[guidedhelpid*='assignmentInstructions'] span").First()
	details.description = strings.TrimSpace(instructions.Text())

	match := pointsRegex.FindStringSubmatch(doc.Text())
	if len(match) >= 2 {
		points, err := strconv.Atoi(match[1])
		if err == nil {
			details.maxPoints = points
		}
	}

	main := doc.Find("div[role='main']").First()
	mainText := main.Text()
	if mainText == "" {
		mainText = doc.Text()
	}
	details.dueText = extractDueText(mainText)

	return details, nil
}

func extractDueText(text string) string {
	match := dueRegex.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}

	datePart := strings.TrimSpace(match[1])
	timePart := ""
	if len(match) >= 3 {
		timePart = strings.TrimSpace(match[2])
	}

	if timeOnlyRegex.MatchString(datePart) {
		// "Due 8:30 AM" carries no date, fill in today's
		today := timezone.Now().Format("January 2")
		return fmt.Sprintf("%s, %s", today, datePart)
	}

	if timePart != "" {
		return fmt.Sprintf("%s, %s", datePart, timePart)
	}
	return datePart
}
