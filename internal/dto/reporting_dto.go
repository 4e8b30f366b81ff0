package dto

// ReportAsOfParams defines query parameters for point-in-time reports.
type ReportAsOfParams struct {
	AsOf string `form:"asOf"` // RFC 3339 date, defaults to today
}

// ReportRangeParams defines query parameters for date-range reports.
type ReportRangeParams struct {
	From string `form:"from" binding:"required"` // RFC 3339 date
	To   string `form:"to" binding:"required"`   // RFC 3339 date
}
