package backtest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrader/journal"
)

func money(x float64) string { return decimal.NewFromFloat(x).StringFixed(2) }

// PrintResult writes the console summary and the per-trade list.
func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Asset:         %s\n", r.Asset)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}
	fmt.Fprintf(w, "Period:        %s .. %s (%d ticks)\n",
		r.Start.UTC().Format(time.RFC3339), r.End.UTC().Format(time.RFC3339), r.Ticks)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.1f%%\n", r.WinRate*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Capital: $%s\n", money(r.InitialCapital))
	fmt.Fprintf(w, "Final Capital: $%s\n", money(r.FinalCapital))
	fmt.Fprintf(w, "Net P/L:       $%s\n", money(r.NetPL()))
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)
	if r.MaxDDPct > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", r.MaxDDPct)
	}
	if r.Killed {
		fmt.Fprintln(w, "Status:        KILLED (portfolio fell below the kill threshold)")
	}

	closes := r.Closes()
	if len(closes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Trades")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, e := range closes {
			mark := "LOSS"
			if e.Won() {
				mark = "WIN "
			}
			fmt.Fprintf(w, "%s %-6s %-5s %-10s %s -> %s %+.2f%% %s\n",
				e.Time.UTC().Format("2006-01-02 15:04"), e.Strategy, e.Side, e.Action,
				money(e.Entry), money(e.Price), e.PnLPercent, mark)
		}
	}
	fmt.Fprintln(w, "==================================================")
}

// Report is the data behind the Org-mode backtest write-up.
type Report struct {
	Result
	RunID   string
	Created time.Time
	Params  string // classifier and risk parameters, pre-rendered
	Notes   []string
}

var orgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"money":  money,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"trades": func(events []journal.Event) string { return demote(journal.FormatEventsOrg(events)) },
}

// demote pushes Org headings one level down so trade blocks nest under
// the report's Trades heading.
func demote(org string) string {
	lines := strings.Split(org, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "*") {
			lines[i] = "*" + l
		}
	}
	return strings.Join(lines, "\n")
}

var orgTemplate = template.Must(template.New("backtest").Funcs(orgFuncs).Parse(OrgTemplate))

// WriteOrg renders the report to w.
func (rep Report) WriteOrg(w io.Writer) error {
	return orgTemplate.Execute(w, rep)
}

// SaveOrg renders the report to path.
func (rep Report) SaveOrg(path string) error {
	var buf bytes.Buffer
	if err := rep.WriteOrg(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const OrgTemplate = `* BACKTEST: {{.Strategy}} {{.Asset}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:ASSET:       {{.Asset}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_CAP:   {{money .InitialCapital}}
:END_CAP:     {{money .FinalCapital}}
:NET_PL:      {{money .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .WinRate)}}
:KILLED:      {{.Killed}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Parameters
{{- if .Params}}
#+begin_example
{{.Params}}
#+end_example
{{- else}}
# (parameters not recorded)
{{- end}}

** Performance Summary
- Net P/L:          *{{money .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDDPct}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |

** Trades
{{trades .Events}}
{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
