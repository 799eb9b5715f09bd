package leaguerepublic

import (
	"errors"
	"strings"
	"testing"

	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

const standingsPageWithHeader = `<html><body>
<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>Games Won</th><th>Games Lost</th><th>+/-</th><th>Pct</th><th>GB</th></tr>
<tr><td>2</td><td>Devils</td><td>5-3</td><td>11</td><td>7</td><td>+4</td><td>.625</td><td>1</td></tr>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>.750</td><td>—</td></tr>
<tr><td>3</td><td>Dragons</td><td>4-4</td><td>9</td><td>9</td><td>0</td><td>.500</td><td>2</td></tr>
<tr><td colspan="8">Updated nightly</td></tr>
</table>
</body></html>`

func TestParseStandings_HeaderDrivenColumns(t *testing.T) {
	t.Parallel()

	rows, err := parseStandings([]byte(standingsPageWithHeader))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.Rank != 1 || first.Team != "Angels" || first.WinLoss != "6-2" {
		t.Fatalf("first row = %+v", first)
	}
	if first.GamesWon != "13" || first.GamesLost != "5" || first.PointMargin != "+8" {
		t.Fatalf("first row counts = %+v", first)
	}
	if first.GamesBehind != "-" {
		t.Fatalf("leader games behind = %q, want - placeholder", first.GamesBehind)
	}
	if rows[1].Team != "Devils" || rows[2].Team != "Dragons" {
		t.Fatalf("rows not sorted by rank: %+v", rows)
	}
}

func TestParseStandings_HeaderColumnsInAnyOrder(t *testing.T) {
	t.Parallel()

	page := `<table>
<tr><th>Pos</th><th>GB</th><th>Team</th><th>+/-</th><th>W-L</th><th>Games Lost</th><th>Games Won</th></tr>
<tr><td>1</td><td>2</td><td>Angels</td><td>+8</td><td>6-2</td><td>5</td><td>13</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.Team != "Angels" {
		t.Fatalf("team = %q", row.Team)
	}
	if row.WinLoss != "6-2" {
		t.Fatalf("win-loss = %q", row.WinLoss)
	}
	if row.GamesWon != "13" || row.GamesLost != "5" {
		t.Fatalf("games = %q/%q", row.GamesWon, row.GamesLost)
	}
	if row.PointMargin != "+8" || row.GamesBehind != "2" {
		t.Fatalf("margin/gb = %q/%q", row.PointMargin, row.GamesBehind)
	}
}

func TestParseStandings_KeywordCellsActAsHeader(t *testing.T) {
	t.Parallel()

	page := `<table>
<tr><td>Pos</td><td>Team</td><td>W-L</td><td>Games Won</td><td>Games Lost</td><td>+/-</td><td>GB</td></tr>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>1.5</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].GamesBehind != "1.5" {
		t.Fatalf("gb = %q, want 1.5", rows[0].GamesBehind)
	}
}

func TestParseStandings_FallbackRequiresEightCells(t *testing.T) {
	t.Parallel()

	// No header anywhere: positional columns over every row.
	page := `<table>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>.750</td><td>-</td></tr>
<tr><td>2</td><td>Devils</td><td>5-3</td><td>11</td><td>7</td><td>+4</td><td>.625</td><td>1</td></tr>
<tr><td>3</td><td>Too</td><td>Short</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 (short row skipped)", len(rows))
	}
	if rows[0].Team != "Angels" || rows[0].GamesBehind != "-" {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[1].PointMargin != "+4" || rows[1].GamesBehind != "1" {
		t.Fatalf("second row = %+v", rows[1])
	}
}

func TestParseStandings_IncompleteHeaderFallsBackToPositions(t *testing.T) {
	t.Parallel()

	// Header row is detected but lacks a games-won label, so every row is
	// rescanned positionally, including the eight-cell minimum.
	page := `<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>GB</th></tr>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>.750</td><td>2</td></tr>
<tr><td>2</td><td>Devils</td><td>5-3</td><td>1</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].GamesWon != "13" || rows[0].GamesBehind != "2" {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestParseStandings_SkipsNonRankRows(t *testing.T) {
	t.Parallel()

	page := `<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>Games Won</th><th>Games Lost</th><th>+/-</th><th>GB</th></tr>
<tr><td>1st</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>-</td></tr>
<tr><td>2</td><td>Devils</td><td>5-3</td><td>11</td><td>7</td><td>+4</td><td>1</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0].Team != "Devils" {
		t.Fatalf("rows = %+v, want only Devils", rows)
	}
}

func TestParseStandings_PlaceholderSubstitution(t *testing.T) {
	t.Parallel()

	page := `<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>Games Won</th><th>Games Lost</th><th>+/-</th><th>GB</th></tr>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>—</td><td>—</td></tr>
</table>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0].PointMargin != "0" {
		t.Fatalf("point margin = %q, want 0", rows[0].PointMargin)
	}
	if rows[0].GamesBehind != "-" {
		t.Fatalf("games behind = %q, want -", rows[0].GamesBehind)
	}
}

func TestParseStandings_PicksBiggestTable(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<table>
<tr><td>Home</td></tr>
<tr><td>Fixtures</td></tr>
</table>
<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>Games Won</th><th>Games Lost</th><th>+/-</th><th>GB</th></tr>
<tr><td>1</td><td>Angels</td><td>6-2</td><td>13</td><td>5</td><td>+8</td><td>-</td></tr>
<tr><td>2</td><td>Devils</td><td>5-3</td><td>11</td><td>7</td><td>+4</td><td>1</td></tr>
</table>
</body></html>`

	rows, err := parseStandings([]byte(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 || rows[0].Team != "Angels" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseStandings_RejectsChallengePage(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>Attention Required! | Cloudflare</title></head>
<body>Please complete the check below.</body></html>`

	_, err := parseStandings([]byte(page))
	if !errors.Is(err, usecase.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "bot protection") {
		t.Fatalf("err = %v, want bot protection message", err)
	}
}

func TestParseStandings_ErrorWhenNoTable(t *testing.T) {
	t.Parallel()

	_, err := parseStandings([]byte("<html><body><p>maintenance</p></body></html>"))
	if !errors.Is(err, usecase.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestParseStandings_ErrorWhenNoTeamRows(t *testing.T) {
	t.Parallel()

	page := `<table>
<tr><th>Pos</th><th>Team</th><th>W-L</th><th>Games Won</th><th>Games Lost</th><th>+/-</th><th>GB</th></tr>
<tr><td>TBD</td><td>—</td><td>—</td><td>—</td><td>—</td><td>—</td><td>—</td></tr>
</table>`

	_, err := parseStandings([]byte(page))
	if !errors.Is(err, usecase.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestNormalizeCellText_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	if got := normalizeCellText("  Angels \n\t FC  "); got != "Angels FC" {
		t.Fatalf("normalized = %q", got)
	}
}
