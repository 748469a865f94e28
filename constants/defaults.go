package constants

const (
	AppName = "data-lander"

	// DefaultCategoryColumn is the column holding the category of each row
	DefaultCategoryColumn = "platform_name"

	// ColumnarExtension is the file extension of published artifacts
	ColumnarExtension = "parquet"

	// DefaultArchiveLayout matches the daily statement-of-reasons dump names,
	// e.g. sor-global-2023-09-25-full.zip
	DefaultArchiveLayout = `sor-global-%{YEAR:year}-%{MONTHNUM:month}-%{MONTHDAY:day}-%{VARIANT:variant}.zip`

	DefaultMaxNestingDepth = 8
	// DefaultMaxExpandedBytes bounds the total bytes written by one extraction (256 GiB)
	DefaultMaxExpandedBytes int64 = 256 << 30
)

// DefaultAllowList is the set of platforms retained by default
var DefaultAllowList = []string{
	"Facebook",
	"Discord Netherlands B.V.",
	"Google Maps",
	"Instagram",
	"Kleinanzeigen",
	"Leboncoin",
	"LinkedIn",
	"Reddit",
	"Telegram",
	"TikTok",
	"X",
}
