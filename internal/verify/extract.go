package verify

import (
	"regexp"
	"strconv"
	"strings"
)

// RuleKind tags one extraction strategy.
type RuleKind int

const (
	// RulePattern runs a regexp over the flattened document text and
	// takes the first capturing group of the first match.
	RulePattern RuleKind = iota
	// RuleQuery locates a label element by goquery selector and takes
	// the text of its following sibling, nested tags stripped.
	RuleQuery
	// RuleKey reads a dotted key path from a structured document;
	// numeric segments index into arrays.
	RuleKey
)

// Rule is one declarative extraction attempt for one field. Rules are
// evaluated strictly in declared order; the first rule producing a
// non-empty value wins.
type Rule struct {
	Kind RuleKind
	Expr string
	// Strip is removed from the captured value before trimming, for
	// labels and unit words that bleed into a capture.
	Strip string
}

// FieldType drives normalization of the extracted raw string.
type FieldType int

const (
	FieldText FieldType = iota
	FieldName
	FieldAmount
	FieldDate
)

// FieldSpec declares how one logical receipt field is extracted and
// normalized, and whether the validator treats it as required.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	Rules    []Rule
}

// ExtractField runs one field's rule cascade against a parsed
// document. It never fails: absence is the empty string.
func ExtractField(doc *Document, rules []Rule) string {
	for _, rule := range rules {
		var raw string
		switch rule.Kind {
		case RulePattern:
			raw = extractPattern(doc.Text, rule.Expr)
		case RuleQuery:
			raw = extractQuery(doc, rule.Expr)
		case RuleKey:
			raw = extractKey(doc.JSON, rule.Expr)
		}
		if rule.Strip != "" {
			raw = strings.ReplaceAll(raw, rule.Strip, "")
		}
		raw = strings.TrimSpace(raw)
		if raw != "" {
			return raw
		}
	}
	return ""
}

// ExtractRecord runs every field's cascade, producing the raw
// pre-normalization record. Partial records are valid; the validator
// decides what is fatal.
func ExtractRecord(doc *Document, fields []FieldSpec) map[string]string {
	record := make(map[string]string, len(fields))
	for _, field := range fields {
		if value := ExtractField(doc, field.Rules); value != "" {
			record[field.Name] = value
		}
	}
	return record
}

func extractPattern(text, expr string) string {
	if text == "" {
		return ""
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return ""
	}
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func extractQuery(doc *Document, selector string) string {
	if doc.HTML == nil {
		return ""
	}
	sel := doc.HTML.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	// The value lives in the element following the label; goquery's
	// Text already strips nested tags.
	next := sel.Next()
	if next.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(next.Text())
}

func extractKey(payload map[string]any, path string) string {
	if payload == nil {
		return ""
	}
	var current any = payload
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return ""
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return ""
			}
			current = node[idx]
		default:
			return ""
		}
	}
	return stringify(current)
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case nil:
		return ""
	}
	return ""
}
