package pricing

// contractDiscounts maps a contract length in months to a percentage
// discount on the monthly recurring price. The table is fixed; the selector
// UI only offers these five lengths.
var contractDiscounts = map[int]int{
	1:  0,
	6:  3,
	12: 5,
	18: 7,
	24: 10,
}

// ContractMonths lists the offered contract lengths in ascending order.
var ContractMonths = []int{1, 6, 12, 18, 24}

// DiscountFor returns the contract discount percent for the given number of
// months. Unknown values default to 0%; the function is total and never
// fails.
func DiscountFor(months int) int {
	return contractDiscounts[months]
}
