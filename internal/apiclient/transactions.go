package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

type transactionBody struct {
	ID        string      `json:"id,omitempty"`
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
	Category  string      `json:"category"`
	Note      string      `json:"note"`
	Date      time.Time   `json:"date"`
	Recurring bool        `json:"recurring"`
}

type pageBody struct {
	Items    []transactionBody `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasMore  bool              `json:"has_more"`
}

func toTransactionBody(tx *transaction.Transaction) transactionBody {
	return transactionBody{
		ID:        tx.ID,
		Type:      string(tx.Kind),
		Amount:    json.Number(tx.Amount.String()),
		Currency:  tx.Currency,
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date,
		Recurring: tx.Recurring,
	}
}

func (b transactionBody) toTransaction() (*transaction.Transaction, error) {
	amount, err := decimal.NewFromString(b.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("parsing amount of %s: %w", b.ID, err)
	}

	return &transaction.Transaction{
		ID:        b.ID,
		Kind:      transaction.Kind(b.Type),
		Amount:    amount,
		Currency:  b.Currency,
		Category:  b.Category,
		Note:      b.Note,
		Date:      b.Date,
		Recurring: b.Recurring,
	}, nil
}

// Transactions is a transaction.Repository backed by the remote API.
type Transactions struct {
	client *Client
}

func NewTransactions(client *Client) *Transactions {
	return &Transactions{client: client}
}

func mapTxErr(err error) error {
	return mapStatus(err, transaction.ErrNotFound, transaction.ErrInvalid)
}

func (r *Transactions) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	body := toTransactionBody(tx)
	body.ID = ""

	var out transactionBody
	if err := r.client.Post(ctx, "/transactions", body, &out); err != nil {
		return fmt.Errorf("creating transaction: %w", mapTxErr(err))
	}

	tx.ID = out.ID

	return nil
}

func (r *Transactions) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	var out transactionBody
	if err := r.client.Get(ctx, "/transactions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting transaction: %w", mapTxErr(err))
	}

	return out.toTransaction()
}

func (r *Transactions) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := r.client.Put(ctx, "/transactions/"+url.PathEscape(tx.ID), toTransactionBody(tx), nil); err != nil {
		return fmt.Errorf("updating transaction: %w", mapTxErr(err))
	}

	return nil
}

func (r *Transactions) DeleteTransaction(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, "/transactions/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting transaction: %w", mapTxErr(err))
	}

	return nil
}

func (r *Transactions) ListTransactions(ctx context.Context, filter transaction.ListFilter) (*transaction.Page, error) {
	var out pageBody
	if err := r.client.Get(ctx, "/transactions", FilterParams(filter), &out); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", mapTxErr(err))
	}

	page := &transaction.Page{
		Items:    make([]*transaction.Transaction, 0, len(out.Items)),
		Total:    out.Total,
		Page:     out.Page,
		PageSize: out.PageSize,
		HasMore:  out.HasMore,
	}

	for _, b := range out.Items {
		tx, err := b.toTransaction()
		if err != nil {
			return nil, err
		}

		page.Items = append(page.Items, tx)
	}

	return page, nil
}

// FilterParams encodes filter as query parameters. Unset fields are omitted.
func FilterParams(f transaction.ListFilter) url.Values {
	v := url.Values{}

	if f.Kind != nil {
		v.Set("type", string(*f.Kind))
	}

	if f.Category != nil {
		v.Set("category", *f.Category)
	}

	if f.DateFrom != nil {
		v.Set("date_from", f.DateFrom.Format(time.RFC3339Nano))
	}

	if f.DateTo != nil {
		v.Set("date_to", f.DateTo.Format(time.RFC3339Nano))
	}

	if f.AmountMin != nil {
		v.Set("amount_min", f.AmountMin.String())
	}

	if f.AmountMax != nil {
		v.Set("amount_max", f.AmountMax.String())
	}

	if f.Search != "" {
		v.Set("search", f.Search)
	}

	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}

	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}

	return v
}
