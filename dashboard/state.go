// Package dashboard models the journal screen as an immutable State:
// the fetched trades, the account settings, the simulation toggle and the
// trade form. Every update returns a new State; View derives everything
// shown from it.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/ledger"
	"github.com/rustyeddy/tradejournal/risk"
)

type Field string

const (
	FieldSymbol        Field = "symbol"
	FieldDirection     Field = "direction"
	FieldEntryPrice    Field = "entry_price"
	FieldExitPrice     Field = "exit_price"
	FieldStopLoss      Field = "stop_loss"
	FieldTakeProfit    Field = "take_profit"
	FieldPositionSize  Field = "position_size"
	FieldPnLNet        Field = "pnl_net"
	FieldPlannedRR     Field = "planned_rr"
	FieldStrategyType  Field = "strategy_type"
	FieldEntryModel    Field = "entry_model"
	FieldSession       Field = "session"
	FieldTimeframe     Field = "timeframe"
	FieldMentalState   Field = "mental_state"
	FieldConfluences   Field = "confluences"
	FieldNotes         Field = "notes"
	FieldScreenshotURL Field = "screenshot_url"
	FieldEntryDate     Field = "entry_date"
)

// DefaultStrategy preselects the strategy field of a fresh form.
const DefaultStrategy = "ICT"

// Form holds the raw text of the trade form. Numbers stay strings until
// Submit so a half-typed value never loses keystrokes.
type Form struct {
	Symbol        string `json:"symbol"`
	Direction     string `json:"direction"`
	EntryPrice    string `json:"entry_price"`
	ExitPrice     string `json:"exit_price"`
	StopLoss      string `json:"stop_loss"`
	TakeProfit    string `json:"take_profit"`
	PositionSize  string `json:"position_size"`
	PnLNet        string `json:"pnl_net"`
	PlannedRR     string `json:"planned_rr"`
	StrategyType  string `json:"strategy_type"`
	EntryModel    string `json:"entry_model"`
	Session       string `json:"session"`
	Timeframe     string `json:"timeframe"`
	MentalState   string `json:"mental_state"`
	Confluences   string `json:"confluences"` // comma separated
	Notes         string `json:"notes"`
	ScreenshotURL string `json:"screenshot_url"`
	EntryDate     string `json:"entry_date"`
}

func (f *Form) ptr(field Field) *string {
	switch field {
	case FieldSymbol:
		return &f.Symbol
	case FieldDirection:
		return &f.Direction
	case FieldEntryPrice:
		return &f.EntryPrice
	case FieldExitPrice:
		return &f.ExitPrice
	case FieldStopLoss:
		return &f.StopLoss
	case FieldTakeProfit:
		return &f.TakeProfit
	case FieldPositionSize:
		return &f.PositionSize
	case FieldPnLNet:
		return &f.PnLNet
	case FieldPlannedRR:
		return &f.PlannedRR
	case FieldStrategyType:
		return &f.StrategyType
	case FieldEntryModel:
		return &f.EntryModel
	case FieldSession:
		return &f.Session
	case FieldTimeframe:
		return &f.Timeframe
	case FieldMentalState:
		return &f.MentalState
	case FieldConfluences:
		return &f.Confluences
	case FieldNotes:
		return &f.Notes
	case FieldScreenshotURL:
		return &f.ScreenshotURL
	case FieldEntryDate:
		return &f.EntryDate
	}
	return nil
}

// State is the whole dashboard. Treat it as a value: the With*/Set*
// functions never mutate their receiver.
type State struct {
	AccountID   string
	Trades      []journal.Trade
	Balance     float64
	RiskPercent float64
	Simulate    bool
	EditingID   string
	Form        Form
	Today       time.Time
}

// New seeds a State from the account with an empty form dated today.
func New(acct journal.Account, today time.Time) State {
	s := State{
		AccountID:   acct.ID,
		Trades:      []journal.Trade{},
		Balance:     acct.Balance,
		RiskPercent: acct.RiskPercent,
		Today:       today,
	}
	s.Form = freshForm(today, Form{Direction: string(journal.Long), StrategyType: DefaultStrategy})
	return s
}

func freshForm(today time.Time, keep Form) Form {
	return Form{
		Direction:    keep.Direction,
		StrategyType: keep.StrategyType,
		EntryModel:   keep.EntryModel,
		Session:      keep.Session,
		Timeframe:    keep.Timeframe,
		EntryDate:    firstNonEmpty(keep.EntryDate, today.Format(journal.DateLayout)),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// WithTrades replaces the fetched trade collection.
func (s State) WithTrades(trades []journal.Trade) State {
	s.Trades = append([]journal.Trade(nil), trades...)
	return s
}

func (s State) WithBalance(balance float64) State {
	s.Balance = balance
	s.Form = autoFill(s.Form, s.Balance, s.RiskPercent)
	return s
}

func (s State) WithRiskPercent(pct float64) State {
	s.RiskPercent = pct
	s.Form = autoFill(s.Form, s.Balance, s.RiskPercent)
	return s
}

func (s State) ToggleSimulation() State {
	s.Simulate = !s.Simulate
	return s
}

// BeginEdit loads t into the form. Submit then updates it instead of
// creating a new trade.
func (s State) BeginEdit(t journal.Trade) State {
	s.EditingID = t.ID
	s.Form = Form{
		Symbol:        t.Symbol,
		Direction:     string(t.Direction),
		EntryPrice:    num(t.EntryPrice),
		ExitPrice:     num(t.ExitPrice),
		StopLoss:      num(t.StopLoss),
		TakeProfit:    num(t.TakeProfit),
		PositionSize:  num(t.PositionSize),
		PnLNet:        num(t.PnLNet),
		PlannedRR:     num(t.PlannedRR),
		StrategyType:  t.StrategyType,
		EntryModel:    t.EntryModel,
		Session:       string(t.Session),
		Timeframe:     string(t.Timeframe),
		MentalState:   string(t.MentalState),
		Confluences:   strings.Join(t.Confluences, ", "),
		Notes:         t.Notes,
		ScreenshotURL: t.ScreenshotURL,
		EntryDate:     t.DateKey(),
	}
	return s
}

// ResetForm leaves edit mode and clears the per-trade fields. Direction,
// strategy, model, session, timeframe and date carry over to the next entry.
func (s State) ResetForm() State {
	s.EditingID = ""
	s.Form = freshForm(s.Today, s.Form)
	return s
}

// SetField updates one form field. Changing the entry, stop, take profit
// or direction re-runs the position size and planned RR calculators.
func (s State) SetField(field Field, value string) (State, error) {
	p := s.Form.ptr(field)
	if p == nil {
		return s, fmt.Errorf("unknown form field %q", field)
	}
	*p = value

	switch field {
	case FieldEntryPrice, FieldStopLoss, FieldTakeProfit, FieldDirection:
		s.Form = autoFill(s.Form, s.Balance, s.RiskPercent)
	}
	return s, nil
}

// autoFill writes the calculated size and planned RR into the form. A
// calculation that is not possible with the current input leaves the
// previous value alone.
func autoFill(f Form, balance, riskPercent float64) Form {
	entry := parse(f.EntryPrice)
	stop := parse(f.StopLoss)
	if entry <= 0 || stop <= 0 {
		return f
	}
	if size := risk.PositionSize(balance, riskPercent, entry, stop); size > 0 {
		f.PositionSize = strconv.FormatFloat(size, 'f', 4, 64)
	}
	if tp := parse(f.TakeProfit); tp > 0 {
		long := !strings.EqualFold(strings.TrimSpace(f.Direction), string(journal.Short))
		if rr := risk.PlannedRR(long, entry, stop, tp); rr > 0 {
			f.PlannedRR = strconv.FormatFloat(rr, 'f', 2, 64)
		}
	}
	return f
}

// Submit turns the form into a trade. Blank or unparsable numbers read as
// 0; the trade still goes through journal validation on save.
func (s State) Submit() (journal.Trade, error) {
	f := s.Form
	date, err := journal.ParseDate(firstNonEmpty(f.EntryDate, s.Today.Format(journal.DateLayout)))
	if err != nil {
		return journal.Trade{}, err
	}

	t := journal.Trade{
		ID:            s.EditingID,
		AccountID:     s.AccountID,
		Symbol:        f.Symbol,
		Direction:     journal.Direction(f.Direction),
		EntryPrice:    parse(f.EntryPrice),
		ExitPrice:     parse(f.ExitPrice),
		StopLoss:      parse(f.StopLoss),
		TakeProfit:    parse(f.TakeProfit),
		PositionSize:  parse(f.PositionSize),
		PnLNet:        parse(f.PnLNet),
		PlannedRR:     parse(f.PlannedRR),
		StrategyType:  f.StrategyType,
		EntryModel:    f.EntryModel,
		Session:       journal.Session(f.Session),
		Timeframe:     journal.Timeframe(f.Timeframe),
		MentalState:   journal.MentalState(f.MentalState),
		Confluences:   strings.Split(f.Confluences, ","),
		Notes:         f.Notes,
		ScreenshotURL: f.ScreenshotURL,
		EntryDate:     date,
	}
	journal.Normalize(&t)
	return t, nil
}

// SimConfig is the what-if configuration implied by the state.
func (s State) SimConfig() ledger.SimConfig {
	return ledger.SimConfig{
		StartingBalance: s.Balance,
		RiskPercent:     s.RiskPercent,
		Enabled:         s.Simulate,
	}
}

func parse(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func num(x float64) string {
	if x == 0 {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
