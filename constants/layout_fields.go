package constants

const (
	// known archive layout fields (all other fields are put into the properties map)
	LayoutFieldYear    = "year"
	LayoutFieldMonth   = "month"
	LayoutFieldDay     = "day"
	LayoutFieldVariant = "variant"
)
