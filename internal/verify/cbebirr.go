package verify

import "fmt"

// cbeBirrReceiptURL keys the lookup on the receipt number concatenated
// with the payer's phone number.
func cbeBirrReceiptURL(base string) URLBuilder {
	return func(ref Reference) string {
		return fmt.Sprintf("%s/?id=%s%s", base, ref.Value, ref.Phone)
	}
}

// cbeBirrFields is the extraction table for CBE-Birr mobile money PDF
// receipts.
var cbeBirrFields = []FieldSpec{
	{
		Name: FieldPayerName, Type: FieldName, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Customer Name\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+(?:Phone|Mobile|Region)`},
			{Kind: RulePattern, Expr: `(?i)Payer\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+(?:Phone|Mobile)`},
		},
	},
	{
		Name: FieldPayerPhone, Type: FieldText,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)(?:Phone|Mobile)(?:\s*No\.?)?\s*:?\s+(251\d{9}|09\d{8}|\+?251[\d*]{9})`},
		},
	},
	{
		Name: FieldReceiverName, Type: FieldName,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)(?:Merchant|Receiver) Name\s*:?\s+([A-Za-z][A-Za-z .'-]+?)\s+(?:Amount|Receipt|Transaction)`},
		},
	},
	{
		Name: FieldReference, Type: FieldText, Required: true,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Receipt No\.?\s*:?\s+([A-Z0-9]{8,})`},
			{Kind: RulePattern, Expr: `(?i)Transaction (?:Id|Number)\s*:?\s+([A-Z0-9]{8,})`},
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
			{Kind: RulePattern, Expr: `(?i)(?:Paid|Transaction) Amount\s*:?\s+([\d,]+(?:\.\d+)?)\s*(?:ETB|Birr)?`},
			{Kind: RulePattern, Expr: `(?i)Amount\s*:?\s+([\d,]+(?:\.\d+)?)\s*(?:ETB|Birr)?`},
		},
	},
	{
		Name: FieldStatus, Type: FieldText,
		Rules: []Rule{
			{Kind: RulePattern, Expr: `(?i)Status\s*:?\s+(Completed|Success(?:ful)?|Pending|Failed)`},
		},
	},
}

// newCBEBirrPipeline verifies CBE-Birr mobile money payments. Single
// document endpoint, no fallback tier; the portal shares CBE's
// certificate situation.
func newCBEBirrPipeline(cfg Config) *Pipeline {
	primary := NewHTTPFetcher(cbeBirrReceiptURL(cfg.CBEBirrReceiptURL), FormatPDF,
		WithTimeout(cfg.FetchTimeout),
		WithInsecureTLS(),
		WithRateLimit(cfg.limiter()),
	)
	return &Pipeline{
		Institution: InstitutionCBEBirr,
		Primary:     primary,
		Fields:      cbeBirrFields,
	}
}
