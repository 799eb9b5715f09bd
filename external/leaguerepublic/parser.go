package leaguerepublic

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// headerScanRows bounds the search for a header row; real pages put it first,
// decorated pages push it a few rows down.
const headerScanRows = 12

// columnLayout maps standings fields to cell positions within a data row.
// minCells > 0 marks the positional fallback, which must skip short footer
// and spacer rows instead of misreading them.
type columnLayout struct {
	team        int
	winLoss     int
	gamesWon    int
	gamesLost   int
	pointMargin int
	gamesBehind int
	minCells    int
}

var fallbackLayout = columnLayout{
	team:        1,
	winLoss:     2,
	gamesWon:    3,
	gamesLost:   4,
	pointMargin: 5,
	gamesBehind: 7,
	minCells:    8,
}

func parseStandings(html []byte) ([]standings.Row, error) {
	lowered := strings.ToLower(string(html))
	if strings.Contains(lowered, "cloudflare") &&
		(strings.Contains(lowered, "attention required") || strings.Contains(lowered, "verify you are human")) {
		return nil, fmt.Errorf("%w: blocked by bot protection", usecase.ErrParse)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", usecase.ErrParse, err)
	}

	table := biggestTable(doc)
	if table == nil {
		return nil, fmt.Errorf("%w: no standings table found", usecase.ErrParse)
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("%w: standings table has no rows", usecase.ErrParse)
	}

	layout, dataStart := resolveLayout(rows)

	parsed := make([]standings.Row, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		if i < dataStart {
			return
		}
		cells := cellTexts(row.Find("td"))
		if len(cells) == 0 {
			return
		}
		if layout.minCells > 0 && len(cells) < layout.minCells {
			return
		}

		if !isDigits(cells[0]) {
			return
		}
		rank, err := strconv.Atoi(cells[0])
		if err != nil {
			return
		}

		r := standings.Row{
			Rank:        rank,
			Team:        cellAt(cells, layout.team, "—"),
			WinLoss:     cellAt(cells, layout.winLoss, "—"),
			GamesWon:    cellAt(cells, layout.gamesWon, "0"),
			GamesLost:   cellAt(cells, layout.gamesLost, "0"),
			PointMargin: cellAt(cells, layout.pointMargin, "0"),
			GamesBehind: cellAt(cells, layout.gamesBehind, "-"),
		}
		if r.GamesBehind == "—" || r.GamesBehind == "" {
			r.GamesBehind = "-"
		}
		if r.PointMargin == "—" || r.PointMargin == "" {
			r.PointMargin = "0"
		}
		parsed = append(parsed, r)
	})

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no team rows parsed, table structure may have changed", usecase.ErrParse)
	}

	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].Rank < parsed[j].Rank })
	return parsed, nil
}

// biggestTable picks the table with the most rows; ties keep the first one in
// document order.
func biggestTable(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestRows := -1
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if n := table.Find("tr").Length(); n > bestRows {
			best = table
			bestRows = n
		}
	})
	return best
}

// resolveLayout locates the header row and maps its labels to columns. Any
// unresolved label abandons the header entirely and scans every row with the
// positional fallback.
func resolveLayout(rows *goquery.Selection) (columnLayout, int) {
	headerIdx := -1
	var headers []string

	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= headerScanRows {
			return false
		}
		if row.Find("th").Length() > 0 {
			headers = upperCellTexts(row.Find("th, td"))
			headerIdx = i
			return false
		}

		cells := upperCellTexts(row.Find("td"))
		if len(cells) == 0 {
			return true
		}
		hits := 0
		for _, cell := range cells {
			if strings.Contains(cell, "TEAM") ||
				strings.Contains(cell, "W-L") ||
				strings.Contains(cell, "GAMES") ||
				strings.Contains(cell, "GB") ||
				strings.Contains(cell, "PTS") {
				hits++
			}
		}
		if hits >= 2 {
			headers = cells
			headerIdx = i
			return false
		}
		return true
	})

	if headerIdx < 0 || len(headers) == 0 {
		return fallbackLayout, 0
	}

	resolved := true
	column := func(names ...string) int {
		idx := headerColumn(headers, names...)
		if idx < 0 {
			resolved = false
		}
		return idx
	}

	layout := columnLayout{
		team:        column("TEAM"),
		winLoss:     column("W-L", "W – L", "W/L"),
		gamesWon:    column("GAMES WON", "WON"),
		gamesLost:   column("GAMES LOST", "LOST"),
		pointMargin: column("+/-", "+/−", "+−", "DIFF"),
		gamesBehind: column("GB"),
	}
	if !resolved {
		return fallbackLayout, 0
	}
	return layout, headerIdx + 1
}

// headerColumn returns the first header containing any of the given labels.
func headerColumn(headers []string, names ...string) int {
	for j, h := range headers {
		for _, n := range names {
			if strings.Contains(h, n) {
				return j
			}
		}
	}
	return -1
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, normalizeCellText(cell.Text()))
	})
	return out
}

func upperCellTexts(cells *goquery.Selection) []string {
	out := cellTexts(cells)
	for i := range out {
		out[i] = strings.ToUpper(out[i])
	}
	return out
}

// normalizeCellText collapses whitespace runs the way a browser renders them.
func normalizeCellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cellAt(cells []string, idx int, fallback string) string {
	if idx < 0 || idx >= len(cells) {
		return fallback
	}
	v := strings.TrimSpace(cells[idx])
	if v == "" {
		return fallback
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
