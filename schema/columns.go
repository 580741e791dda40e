package schema

import "github.com/pivolan/ecommerce_analyzer/domain/models"

// Canonical column names.
const (
	OrderID                  = "order_id"
	OrderTimestamp           = "order_timestamp"
	TotalQty                 = "total_qty"
	TotalPayment             = "total_payment"
	TotalWeightGr            = "total_weight_gr"
	TotalReturnedQty         = "total_returned_qty"
	TotalDiscount            = "total_discount"
	ShippingCostBuyer        = "shipping_cost_buyer"
	ShippingCostEstimate     = "shipping_cost_estimate"
	ShippingDiscountEstimate = "shipping_discount_estimate"
	ProductCategories        = "product_categories"
	NumProductCategories     = "num_product_categories"
	OrderStatus              = "order_status"
	ShippingOption           = "shipping_option"
	PaymentMethod            = "payment_method"
	City                     = "city"
	Province                 = "province"

	OrderDate    = "order_date"
	OrderMonth   = "order_month"
	OrderYear    = "order_year"
	OrderWeekday = "order_weekday"
)

// Unknown замещает пропущенные значения категориальных колонок.
const Unknown = "Tidak Diketahui"

// MinRows is the smallest dataset accepted by Validate.
const MinRows = 10

// ColumnSpec declares how one canonical column is coerced and defaulted.
type ColumnSpec struct {
	Name string
	Kind models.ColumnKind
	// Default applies to categorical columns.
	Default string
	// Number applies to numeric columns.
	Number float64
}

// Columns is applied top to bottom by the transformer.
var Columns = []ColumnSpec{
	{Name: OrderID, Kind: models.KindIdentifier},
	{Name: OrderTimestamp, Kind: models.KindTimestamp},

	{Name: TotalQty, Kind: models.KindNumeric},
	{Name: TotalPayment, Kind: models.KindNumeric},
	{Name: TotalWeightGr, Kind: models.KindNumeric},
	{Name: TotalReturnedQty, Kind: models.KindNumeric},
	{Name: TotalDiscount, Kind: models.KindNumeric},
	{Name: ShippingCostBuyer, Kind: models.KindNumeric},
	{Name: ShippingCostEstimate, Kind: models.KindNumeric},
	{Name: ShippingDiscountEstimate, Kind: models.KindNumeric},

	{Name: ProductCategories, Kind: models.KindCategorical, Default: Unknown},
	{Name: OrderStatus, Kind: models.KindCategorical, Default: Unknown},
	{Name: ShippingOption, Kind: models.KindCategorical, Default: Unknown},
	{Name: PaymentMethod, Kind: models.KindCategorical, Default: Unknown},
	{Name: City, Kind: models.KindCategorical, Default: Unknown},
	{Name: Province, Kind: models.KindCategorical, Default: Unknown},

	{Name: NumProductCategories, Kind: models.KindNumeric, Number: 1},
}

// Required columns must be present for a dataset to be accepted.
var Required = []string{TotalQty, TotalPayment, OrderTimestamp}

var Optional = []string{
	OrderID,
	TotalWeightGr,
	TotalReturnedQty,
	TotalDiscount,
	ProductCategories,
	NumProductCategories,
	OrderStatus,
	ShippingOption,
	PaymentMethod,
	City,
	Province,
	ShippingCostBuyer,
	ShippingCostEstimate,
	ShippingDiscountEstimate,
}

// Lookup returns the spec of a canonical column.
func Lookup(name string) (ColumnSpec, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}
