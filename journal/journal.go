package journal

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidTrade = errors.New("invalid trade")
	ErrNoAccount    = errors.New("no account")
	ErrDuplicate    = errors.New("duplicate")
)

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

type Status string

const (
	Win  Status = "WIN"
	Loss Status = "LOSS"
)

// Session is the market session a trade was taken in.
type Session string

const (
	SessionAsia    Session = "ASIA"
	SessionLondon  Session = "LONDON"
	SessionNewYork Session = "NEW_YORK"
	SessionSydney  Session = "SYDNEY"
)

type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
	D1  Timeframe = "D1"
)

// MentalState records how the trader felt at entry.
type MentalState string

const (
	Calm      MentalState = "CALM"
	Confident MentalState = "CONFIDENT"
	Anxious   MentalState = "ANXIOUS"
	FOMO      MentalState = "FOMO"
	Revenge   MentalState = "REVENGE"
	Tired     MentalState = "TIRED"
)

var (
	Sessions     = []Session{SessionAsia, SessionLondon, SessionNewYork, SessionSydney}
	Timeframes   = []Timeframe{M1, M5, M15, H1, H4, D1}
	MentalStates = []MentalState{Calm, Confident, Anxious, FOMO, Revenge, Tired}
)

// Trade is a single journaled trade. Prices of 0 mean "unset".
type Trade struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`

	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`

	EntryPrice   float64 `json:"entry_price"`
	ExitPrice    float64 `json:"exit_price"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit   float64 `json:"take_profit"`
	PositionSize float64 `json:"position_size"`

	PnLNet    float64 `json:"pnl_net"`
	PlannedRR float64 `json:"planned_rr"`
	ActualRR  float64 `json:"actual_rr"`

	StrategyType string      `json:"strategy_type"`
	EntryModel   string      `json:"entry_model"`
	Session      Session     `json:"session"`
	Timeframe    Timeframe   `json:"timeframe"`
	MentalState  MentalState `json:"mental_state"`
	Confluences  []string    `json:"confluences"`

	Notes         string `json:"notes"`
	ScreenshotURL string `json:"screenshot_url"`

	EntryDate time.Time `json:"entry_date"`
	Status    Status    `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account holds the balance and risk settings trades are journaled against.
type Account struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Currency    string    `json:"currency"`
	Balance     float64   `json:"balance"`
	RiskPercent float64   `json:"risk_percent"`
	CreatedAt   time.Time `json:"created_at"`
}

// TradeFilter narrows ListTrades. Zero values mean "no filter".
type TradeFilter struct {
	AccountID string
	Since     time.Time
	Until     time.Time
	Strategy  string
	Symbol    string
	Limit     int
	Offset    int
}

// Store persists accounts and trades. ListTrades returns trades ordered by
// entry date ascending, then by creation time.
type Store interface {
	EnsureAccount(ctx context.Context) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	UpdateAccount(ctx context.Context, a Account) error

	CreateTrade(ctx context.Context, t *Trade) error
	UpdateTrade(ctx context.Context, t *Trade) error
	DeleteTrade(ctx context.Context, id string) error
	GetTrade(ctx context.Context, id string) (Trade, error)
	ListTrades(ctx context.Context, f TradeFilter) ([]Trade, error)

	Ping(ctx context.Context) error
	Close() error
}

const (
	DefaultAccountName    = "Main"
	DefaultAccountBalance = 10000.0
	DefaultCurrency       = "USD"
	DefaultRiskPercent    = 1.0
)

// DefaultAccount is the account created on first use.
func DefaultAccount() Account {
	return Account{
		Name:        DefaultAccountName,
		Currency:    DefaultCurrency,
		Balance:     DefaultAccountBalance,
		RiskPercent: DefaultRiskPercent,
	}
}
