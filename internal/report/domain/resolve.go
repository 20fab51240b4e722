package report

import "strings"

// DateIntent selects which date convention the resolver prefers when a
// sheet carries more than one date-like column.
type DateIntent string

const (
	// DateIntentOrderCreated prefers the order creation timestamp.
	DateIntentOrderCreated DateIntent = "order_created"
	// DateIntentStatement prefers the settlement/statement date.
	DateIntentStatement DateIntent = "statement"
)

// A match rule is a conjunction of substrings that must all occur in
// the lowercased header. Rules are grouped into priority tiers; the
// first tier with any matching header wins, and within a tier the
// first header in sheet order wins.
type matchRule []string

type matchTier []matchRule

var orderCreatedDateTiers = []matchTier{
	{{"订单", "创建"}, {"order", "creat"}},
	{{"创建", "时间"}, {"create", "time"}, {"created"}},
	{{"下单"}, {"order", "date"}, {"order", "time"}},
	{{"日期"}, {"date"}, {"时间"}, {"time"}},
}

var statementDateTiers = []matchTier{
	{{"结算", "日期"}, {"statement", "date"}, {"settle", "date"}},
	{{"结算", "时间"}, {"结算"}, {"statement"}, {"settle"}},
	{{"日期"}, {"date"}, {"时间"}, {"time"}},
}

var amountTiers = []matchTier{
	{{"结算", "金额"}, {"settlement", "amount"}, {"settle", "amount"}},
	{{"实收"}, {"金额"}, {"amount"}},
	{{"收入"}, {"revenue"}, {"营业额"}, {"total"}},
}

var skuTiers = []matchTier{
	{{"sku"}, {"商品", "编码"}, {"货号"}},
	{{"product", "code"}, {"item", "no"}, {"商品", "编号"}},
}

var quantityTiers = []matchTier{
	{{"数量"}, {"quantity"}, {"qty"}},
	{{"件数"}, {"count"}},
}

// ResolveFields heuristically maps the semantic slots onto the decoded
// headers. Unresolved slots stay empty; the caller decides whether an
// empty required slot is fatal (ErrUnresolvedMapping) or is filled by
// an operator-supplied override.
func ResolveFields(headers []string, intent DateIntent) FieldMapping {
	dateTiers := orderCreatedDateTiers
	if intent == DateIntentStatement {
		dateTiers = statementDateTiers
	}
	return FieldMapping{
		DateField:     resolveSlot(headers, dateTiers),
		AmountField:   resolveSlot(headers, amountTiers),
		SKUField:      resolveSlot(headers, skuTiers),
		QuantityField: resolveSlot(headers, quantityTiers),
	}
}

func resolveSlot(headers []string, tiers []matchTier) string {
	for _, tier := range tiers {
		for _, header := range headers {
			lowered := strings.ToLower(strings.TrimSpace(header))
			if lowered == "" {
				continue
			}
			for _, rule := range tier {
				if ruleMatches(lowered, rule) {
					return header
				}
			}
		}
	}
	return ""
}

func ruleMatches(header string, rule matchRule) bool {
	for _, keyword := range rule {
		if !strings.Contains(header, keyword) {
			return false
		}
	}
	return true
}
