package transaction

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type transactionResponse struct {
	ID        string           `json:"id"`
	Type      transaction.Kind `json:"type"`
	Amount    json.Number      `json:"amount"`
	Currency  string           `json:"currency"`
	Category  string           `json:"category"`
	Note      string           `json:"note"`
	Date      time.Time        `json:"date"`
	Recurring bool             `json:"recurring"`
}

type pageResponse struct {
	Items    []transactionResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	HasMore  bool                  `json:"has_more"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:        tx.ID,
		Type:      tx.Kind,
		Amount:    number(tx.Amount),
		Currency:  tx.Currency,
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date,
		Recurring: tx.Recurring,
	}
}

func toPageResponse(p *transaction.Page) pageResponse {
	resp := pageResponse{
		Items:    make([]transactionResponse, len(p.Items)),
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		HasMore:  p.HasMore,
	}

	for i, tx := range p.Items {
		resp.Items[i] = toResponse(tx)
	}

	return resp
}

type categoryTotalResponse struct {
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount"`
	Formatted string      `json:"formatted"`
	Color     string      `json:"color"`
}

type dailyTotalResponse struct {
	Date    string      `json:"date"`
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
}

type statsResponse struct {
	Period        stats.Period            `json:"period"`
	Month         string                  `json:"month"`
	From          time.Time               `json:"from"`
	To            time.Time               `json:"to"`
	Currency      string                  `json:"currency"`
	TotalIncome   json.Number             `json:"total_income"`
	TotalExpenses json.Number             `json:"total_expenses"`
	Balance       json.Number             `json:"balance"`
	ByCategory    []categoryTotalResponse `json:"by_category"`
	Daily         []dailyTotalResponse    `json:"daily"`
}

// toStatsResponse converts every amount of snap into code.
func toStatsResponse(snap *stats.Snapshot, code string, rates currency.Rates) statsResponse {
	conv := func(d decimal.Decimal) json.Number {
		return number(currency.Convert(d, code, rates).Round(2))
	}

	resp := statsResponse{
		Period:        snap.Period,
		Month:         snap.Month,
		From:          snap.From,
		To:            snap.To,
		Currency:      code,
		TotalIncome:   conv(snap.TotalIncome),
		TotalExpenses: conv(snap.TotalExpenses),
		Balance:       conv(snap.Balance),
		ByCategory:    make([]categoryTotalResponse, len(snap.ByCategory)),
		Daily:         make([]dailyTotalResponse, len(snap.Daily)),
	}

	for i, c := range snap.ByCategory {
		resp.ByCategory[i] = categoryTotalResponse{
			Name:      c.Name,
			Amount:    conv(c.Amount),
			Formatted: currency.Display(c.Amount, code, rates),
			Color:     c.Color,
		}
	}

	for i, d := range snap.Daily {
		resp.Daily[i] = dailyTotalResponse{Date: d.Date, Income: conv(d.Income), Expense: conv(d.Expense)}
	}

	return resp
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
