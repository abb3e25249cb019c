package ledger

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// Report is the input of the Org summary template.
type Report struct {
	Title     string
	Account   string
	Currency  string
	Created   time.Time
	Snapshot  Snapshot
	SimConfig SimConfig
}

var reportFuncs = template.FuncMap{
	"money": func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"pct":   func(x float64) string { return fmt.Sprintf("%.1f%%", x) },
	"r":     func(x float64) string { return fmt.Sprintf("%.2fR", x) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"last": func(points []EquityPoint) EquityPoint {
		if len(points) == 0 {
			return EquityPoint{}
		}
		return points[len(points)-1]
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(OrgReportTemplate))

// WriteOrgReport renders rep as an Org-mode summary.
func WriteOrgReport(w io.Writer, rep Report) error {
	return reportTemplate.Execute(w, rep)
}

const OrgReportTemplate = `* {{if .Title}}{{.Title}}{{else}}Trading Journal{{end}}
:PROPERTIES:
:ACCOUNT:     {{.Account}}
:CURRENCY:    {{.Currency}}
:TRADES:      {{.Snapshot.Stats.Trades}}
:WINS:        {{.Snapshot.Stats.Wins}}
:LOSSES:      {{.Snapshot.Stats.Losses}}
:NET_PNL:     {{money .Snapshot.Stats.TotalPnL}}
:WIN_RATE:    {{pct .Snapshot.Stats.WinRate}}
:AVG_RR:      {{r .Snapshot.Stats.AvgRR}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net PnL:          *{{money .Snapshot.Stats.TotalPnL}}*
- Win Rate:         *{{pct .Snapshot.Stats.WinRate}}*
- Avg RR:           *{{r .Snapshot.Stats.AvgRR}}*
- Profit Factor:    *{{if ne .Snapshot.Stats.ProfitFactor 0.0}}{{printf "%.2f" .Snapshot.Stats.ProfitFactor}}{{else}}n/a{{end}}*
- Expectancy:       *{{money .Snapshot.Stats.Expectancy}}*

** Strategies
| Strategy | Trades | Wins | Win Rate | PnL |
|----------+--------+------+----------+-----|
{{- range .Snapshot.Strategies }}
| {{.Strategy}} | {{.Trades}} | {{.Wins}} | {{pct .WinRate}} | {{money .PnL}} |
{{- end }}
{{- if .Snapshot.Equity.Simulated }}

** Simulation
| Parameter        | Value |
|------------------+-------|
| Starting Balance | {{money .SimConfig.StartingBalance}} |
| Risk per Trade % | {{printf "%.2f" .SimConfig.RiskPercent}} |
| Final Balance    | {{money .Snapshot.Equity.FinalBalance}} |
| Max Drawdown %   | {{printf "%.2f" .Snapshot.Equity.MaxDrawdownPct}} |
{{- end }}
{{- if .Snapshot.Equity.Points }}
{{- with last .Snapshot.Equity.Points }}

** Equity
- Last trade: {{.Date.Format "2006-01-02"}}, cumulative PnL {{money .ActualCumulativePnL}}
{{- end }}
{{- end }}
`
