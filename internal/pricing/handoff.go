package pricing

import (
	"net/url"
	"strconv"

	"capsule/internal/types"
)

// Handoff query parameter keys. The downstream checkout/summary page
// consumes this flat key/value map; the keys are a wire contract shared with
// the web frontend.
const (
	paramPurchaseType = "purchaseType"
	paramPlan         = "plan"
	paramPrice        = "price"
	paramCap          = "cap"
	paramUsers        = "users"
	paramPeriod       = "period"
	paramDiscount     = "discount"
	paramMonthlyTotal = "monthlyTotal"
	paramOneTimeTotal = "oneTimeTotal"
	paramTotalAmount  = "totalAmount"
)

// HandoffParams serializes a computed quote into the URL query parameters
// handed to the checkout/summary page: the aggregated totals, the plan
// snapshot, and one parameter per add-on category. Values are plain
// URL-encoded strings with no versioned schema.
func HandoffParams(in types.QuoteInput, q types.Quote) url.Values {
	v := url.Values{}

	ctx := in.Context
	if !ctx.Valid() {
		ctx = types.ContextPersonal
	}

	v.Set(paramPurchaseType, string(ctx))
	v.Set(paramPlan, string(q.Plan.Name))
	v.Set(paramPrice, q.Plan.UnitPrice.String())
	v.Set(paramCap, strconv.FormatInt(in.TokenVolume, 10))
	v.Set(paramUsers, strconv.Itoa(q.SeatCount))
	v.Set(paramPeriod, strconv.Itoa(q.Months))
	v.Set(paramDiscount, strconv.Itoa(q.DiscountPercent))
	v.Set(paramMonthlyTotal, q.MonthlyRecurring.String())
	v.Set(paramOneTimeTotal, q.OneTimeTotal.String())
	v.Set(paramTotalAmount, q.GrandTotal.String())

	sel := in.AddOns
	if ctx == types.ContextBusiness {
		sel = ApplySeatChange(sel, q.SeatCount)
	} else {
		sel = types.AddOnSelection{}
	}

	v.Set("adminTier", string(sel.AdminConsole))
	v.Set("securityGuide", strconv.Itoa(int(sel.SecurityGuide)))
	v.Set("keywordModule", strconv.FormatBool(sel.KeywordModule))
	v.Set("keywordFilter", string(sel.KeywordFilter))
	v.Set("rag", strconv.FormatBool(sel.RAG))
	v.Set("graphRag", strconv.FormatBool(sel.GraphRAG))
	v.Set("docSecurity", strconv.FormatBool(sel.DocSecurity))
	v.Set("aiAnswer", strconv.FormatBool(sel.AIAnswer))
	v.Set("unstructured", strconv.FormatBool(sel.Unstructured))
	v.Set("tokenPacks", strconv.Itoa(sel.TokenPacks))

	return v
}
