package dashboard

import (
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/risk"
)

// View is what the dashboard renders.
type View struct {
	ledger.Snapshot

	// Trades newest first, the order of the history table.
	Trades []journal.Trade `json:"trades"`

	Balance     float64          `json:"balance"`
	RiskPercent float64          `json:"risk_percent"`
	RiskAmount  float64          `json:"risk_amount"`
	Simulation  ledger.SimConfig `json:"simulation"`

	Editing   bool   `json:"editing"`
	EditingID string `json:"editing_id,omitempty"`
	Form      Form   `json:"form"`
}

// View derives the dashboard from s. It is recomputed from scratch on
// every call.
func (s State) View() View {
	sim := s.SimConfig()
	chron := ledger.Chronological(s.Trades)

	newest := make([]journal.Trade, len(chron))
	for i, t := range chron {
		newest[len(chron)-1-i] = t
	}

	return View{
		Snapshot:    ledger.Derive(s.Trades, sim),
		Trades:      newest,
		Balance:     s.Balance,
		RiskPercent: s.RiskPercent,
		RiskAmount:  risk.RiskAmount(s.Balance, s.RiskPercent),
		Simulation:  sim,
		Editing:     s.EditingID != "",
		EditingID:   s.EditingID,
		Form:        s.Form,
	}
}
