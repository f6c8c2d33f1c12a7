package verify

import "fmt"

func abyssiniaReceiptURL(base string) URLBuilder {
	return func(ref Reference) string {
		return fmt.Sprintf("%s/?trx=%s&acc=%s", base, ref.Value, ref.AccountSuffix)
	}
}

// abyssiniaFields reads the structured slink payload directly; the
// transaction of interest is the first element of the body array.
var abyssiniaFields = []FieldSpec{
	{
		Name: FieldPayerName, Type: FieldName,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.senderName"},
			{Kind: RuleKey, Expr: "body.0.sender.name"},
		},
	},
	{
		Name: FieldReceiverName, Type: FieldName,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.beneficiaryName"},
			{Kind: RuleKey, Expr: "body.0.beneficiary.name"},
		},
	},
	{
		Name: FieldReference, Type: FieldText, Required: true,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.transactionRef"},
			{Kind: RuleKey, Expr: "body.0.reference"},
		},
	},
	{
		Name: FieldDateValue, Type: FieldDate, Required: true,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.transactionDate"},
			{Kind: RuleKey, Expr: "body.0.date"},
		},
	},
	{
		Name: FieldAmountValue, Type: FieldAmount, Required: true,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.amount", Strip: "Birr"},
			{Kind: RuleKey, Expr: "body.0.transactionAmount", Strip: "Birr"},
		},
	},
	{
		Name: FieldReason, Type: FieldText,
		Rules: []Rule{
			{Kind: RuleKey, Expr: "body.0.narrative"},
		},
	},
}

// abyssiniaPreCheck gates extraction on the upstream's own verdict:
// the payload carries an explicit status that must read success, and a
// body array that must hold at least one transaction.
func abyssiniaPreCheck(doc *Document) error {
	var status string
	if header, ok := doc.JSON["header"].(map[string]any); ok {
		status, _ = header["status"].(string)
	}
	if status != "success" {
		return &UpstreamRejection{Status: status}
	}
	body, ok := doc.JSON["body"].([]any)
	if !ok || len(body) == 0 {
		return &UpstreamRejection{
			Status:  status,
			Message: "No transaction data found in response body",
		}
	}
	return nil
}

// newAbyssiniaPipeline verifies Bank of Abyssinia transfers from the
// structured slink endpoint. Single tier.
func newAbyssiniaPipeline(cfg Config) *Pipeline {
	primary := NewHTTPFetcher(abyssiniaReceiptURL(cfg.AbyssiniaReceiptURL), FormatJSON,
		WithTimeout(cfg.FetchTimeout),
		WithRateLimit(cfg.limiter()),
	)
	return &Pipeline{
		Institution: InstitutionAbyssinia,
		Primary:     primary,
		PreCheck:    abyssiniaPreCheck,
		Fields:      abyssiniaFields,
	}
}
