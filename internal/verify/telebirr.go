package verify

import "fmt"

func telebirrReceiptURL(base string) URLBuilder {
	return func(ref Reference) string {
		return fmt.Sprintf("%s/%s", base, ref.Value)
	}
}

// telebirrFields extracts from the receipt page's label/value table,
// falling back to the relay's structured keys when the fallback tier
// produced JSON instead of markup.
var telebirrFields = []FieldSpec{
	{
		Name: FieldPayerName, Type: FieldName, Required: true,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Customer Name')`},
			{Kind: RuleQuery, Expr: `td:contains('Payer Name')`},
			{Kind: RuleKey, Expr: "payerName"},
		},
	},
	{
		Name: FieldPayerPhone, Type: FieldText,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Customer Phone')`},
			{Kind: RuleQuery, Expr: `td:contains('Payer telebirr no')`},
			{Kind: RuleKey, Expr: "payerPhone"},
		},
	},
	{
		Name: FieldReceiverName, Type: FieldName,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Credited Party Name')`},
			{Kind: RuleKey, Expr: "creditedPartyName"},
		},
	},
	{
		Name: FieldReceiverAccount, Type: FieldText,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Credited Party Account No')`},
			{Kind: RuleKey, Expr: "creditedPartyAccountNo"},
		},
	},
	{
		Name: FieldStatus, Type: FieldText,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Transaction Status')`},
			{Kind: RuleKey, Expr: "transactionStatus"},
		},
	},
	{
		Name: FieldReference, Type: FieldText, Required: true,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Receipt No')`},
			{Kind: RuleKey, Expr: "receiptNo"},
		},
	},
	{
		Name: FieldDateValue, Type: FieldDate, Required: true,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Payment Date')`},
			{Kind: RuleKey, Expr: "paymentDate"},
		},
	},
	{
		Name: FieldAmountValue, Type: FieldAmount,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Settled Amount')`, Strip: "Birr"},
			{Kind: RuleKey, Expr: "settledAmount"},
		},
	},
	{
		Name: FieldServiceFee, Type: FieldAmount,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Service Fee')`, Strip: "Birr"},
			{Kind: RuleKey, Expr: "serviceFee"},
		},
	},
	{
		Name: FieldTotalAmount, Type: FieldAmount, Required: true,
		Rules: []Rule{
			{Kind: RuleQuery, Expr: `td:contains('Total Paid Amount')`, Strip: "Birr"},
			{Kind: RuleKey, Expr: "totalPaidAmount"},
		},
	},
}

// newTelebirrPipeline verifies Telebirr payments: the ethiotelecom
// receipt page primary, a relay mirror fallback. The relay answers
// with markup or JSON depending on its mood; Parse sniffs which.
func newTelebirrPipeline(cfg Config) *Pipeline {
	primary := NewHTTPFetcher(telebirrReceiptURL(cfg.TelebirrReceiptURL), FormatHTML,
		WithTimeout(cfg.FetchTimeout),
		WithRateLimit(cfg.limiter()),
	)
	fallback := NewHTTPFetcher(telebirrReceiptURL(cfg.TelebirrRelayURL), FormatHTML,
		WithTimeout(cfg.FetchTimeout),
		WithRateLimit(cfg.limiter()),
	)
	return &Pipeline{
		Institution: InstitutionTelebirr,
		Primary:     primary,
		Fallback:    fallback,
		Usable:      telebirrUsable,
		Fields:      telebirrFields,
	}
}

// telebirrUsable rejects shell pages: the receipt endpoint sometimes
// renders its table skeleton with every value cell empty, which the
// relay can still resolve.
func telebirrUsable(doc *Document) error {
	if doc.Format != FormatHTML {
		return nil
	}
	if ExtractField(doc, []Rule{{Kind: RuleQuery, Expr: `td:contains('Receipt No')`}}) == "" {
		return fmt.Errorf("receipt page has no receipt number")
	}
	return nil
}
