package config

// Application constants
const (
	AppName    = "UGB Geo-Monitor"
	AppVersion = "1.0.0"

	// API Endpoints
	APIBasePath       = "/api"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"

	// ExportFilePrefix starts every downloaded recap workbook name.
	ExportFilePrefix = "UGB_Rekap_"
	// TimestampLayout stamps export and backup file names.
	TimestampLayout = "20060102_150405"
	// ExportSheetName is the sheet holding the recap in exported workbooks.
	ExportSheetName = "Rekap UGB"
)
