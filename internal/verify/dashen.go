package verify

import "fmt"

func dashenReceiptURL(base string) URLBuilder {
	return func(ref Reference) string {
		return fmt.Sprintf("%s/%s", base, ref.Value)
	}
}

// dashenFields is the extraction table for Dashen super-app PDF
// receipts.
var dashenFields = []FieldSpec{
	{
		Name: FieldPayerName, Type: FieldName, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Sender Name\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+(?:Sender|Account)`},
			{Kind: RulePattern, Expr: `(?i)From\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+Account`},
		},
	},
	{
		Name: FieldPayerAccount, Type: FieldText,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Sender Account\s*:?\s+([0-9*]{6,})`},
		},
	},
	{
		Name: FieldReceiverName, Type: FieldName,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Receiver Name\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+(?:Receiver|Account|Transaction)`},
			{Kind: RulePattern, Expr: `(?i)To\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+Account`},
		},
	},
	{
		Name: FieldReference, Type: FieldText, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Transaction Ref(?:erence)?\s*:?\s+([A-Z0-9]{8,})`},
			{Kind: RulePattern, Expr: `(?i)Reference No\.?\s*:?\s+([A-Z0-9]{8,})`},
		},
	},
	{
		Name: FieldDateValue, Type: FieldDate, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Transaction Date\s*:?\s+(\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2}:\d{2})`},
			{Kind: RulePattern, Expr: `(?i)Date\s*:?\s+(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2})`},
		},
	},
	{
		Name: FieldAmountValue, Type: FieldAmount, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Transferred Amount\s*:?\s+([\d,]+(?:\.\d+)?)\s*(?:ETB|Birr)?`},
			{Kind: RulePattern, Expr: `(?i)Amount\s*:?\s+([\d,]+(?:\.\d+)?)\s*(?:ETB|Birr)?`},
		},
	},
	{
		Name: FieldServiceFee, Type: FieldAmount,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Service Charge\s*:?\s+([\d,]+(?:\.\d+)?)`},
		},
	},
	{
		Name: FieldTotalAmount, Type: FieldAmount,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Total Amount\s*:?\s+([\d,]+(?:\.\d+)?)`},
		},
	},
}

// newDashenPipeline verifies Dashen transfers from the super-app
// receipt endpoint. Single tier; the endpoint has proven stable.
func newDashenPipeline(cfg Config) *Pipeline {
	primary := NewHTTPFetcher(dashenReceiptURL(cfg.DashenReceiptURL), FormatPDF,
		WithTimeout(cfg.FetchTimeout),
		WithRateLimit(cfg.limiter()),
	)
	return &Pipeline{
		Institution: InstitutionDashen,
		Primary:     primary,
		Fields:      dashenFields,
	}
}
