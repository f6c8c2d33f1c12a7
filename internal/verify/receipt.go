package verify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical field names shared by the institution rule tables and the
// receipt builder.
const (
	FieldPayerName       = "payer_name"
	FieldPayerAccount    = "payer_account"
	FieldPayerPhone      = "payer_phone"
	FieldReceiverName    = "receiver_name"
	FieldReceiverAccount = "receiver_account"
	FieldAmountValue     = "amount"
	FieldServiceFee      = "service_fee"
	FieldTotalAmount     = "total_amount"
	FieldDateValue       = "date"
	FieldReference       = "reference"
	FieldReason          = "reason"
	FieldStatus          = "status"
)

// Receipt is the normalized, typed transaction record. Fields that do
// not apply to an institution are left zero and omitted from JSON.
type Receipt struct {
	Institution     Institution     `json:"institution"`
	Reference       string          `json:"reference"`
	PayerName       string          `json:"payer_name,omitempty"`
	PayerAccount    string          `json:"payer_account,omitempty"`
	PayerPhone      string          `json:"payer_phone,omitempty"`
	ReceiverName    string          `json:"receiver_name,omitempty"`
	ReceiverAccount string          `json:"receiver_account,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	ServiceFee      decimal.Decimal `json:"service_fee,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount,omitempty"`
	Date            time.Time       `json:"date"`
	Reason          string          `json:"reason,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// buildReceipt normalizes a raw extracted record into a typed receipt,
// returning the names of required fields that are missing or failed to
// coerce. The receipt is complete iff missing is empty.
func buildReceipt(inst Institution, fields []FieldSpec, record map[string]string) (*Receipt, []string) {
	receipt := &Receipt{Institution: inst}
	var missing []string

	for _, field := range fields {
		raw, present := record[field.Name]
		ok := present
		if present {
			switch field.Type {
			case FieldAmount:
				ok = receipt.setAmount(field.Name, raw)
			case FieldDate:
				ok = receipt.setDate(field.Name, raw)
			case FieldName:
				receipt.setText(field.Name, NormalizeName(raw))
			default:
				receipt.setText(field.Name, raw)
			}
		}
		if field.Required && !ok {
			missing = append(missing, field.Name)
		}
	}
	return receipt, missing
}

func (r *Receipt) setAmount(name, raw string) bool {
	amount, ok := NormalizeAmount(raw)
	if !ok {
		return false
	}
	switch name {
	case FieldServiceFee:
		r.ServiceFee = amount
	case FieldTotalAmount:
		r.TotalAmount = amount
	default:
		r.Amount = amount
	}
	return true
}

func (r *Receipt) setDate(name, raw string) bool {
	date, ok := NormalizeDate(raw)
	if !ok {
		return false
	}
	r.Date = date
	return true
}

func (r *Receipt) setText(name, value string) {
	switch name {
	case FieldPayerName:
		r.PayerName = value
	case FieldPayerAccount:
		r.PayerAccount = value
	case FieldPayerPhone:
		r.PayerPhone = value
	case FieldReceiverName:
		r.ReceiverName = value
	case FieldReceiverAccount:
		r.ReceiverAccount = value
	case FieldReference:
		r.Reference = value
	case FieldReason:
		r.Reason = value
	case FieldStatus:
		r.Status = value
	}
}
