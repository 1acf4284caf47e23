package domain

import "errors"

// 准入侧的领域错误。每个错误只影响一次入场/离场请求。
var (
	ErrAttractionNotFound     = errors.New("attraction not found")
	ErrAttractionOutOfService = errors.New("attraction is out of service")
	ErrCapacityExceeded       = errors.New("attraction is at capacity")

	ErrInvalidCredentialFormat = errors.New("credential format is invalid")
	ErrInvalidEntryType        = errors.New("unknown entry credential type")
	ErrNoValidTicket           = errors.New("no valid ticket for this entry")

	ErrWrongAttractionForTicket    = errors.New("ticket event does not include this attraction")
	ErrTicketNotValidForTimeWindow = errors.New("ticket is outside its event time window")
	ErrTicketExpired               = errors.New("ticket visit date has passed")
	ErrTicketNotValidForToday      = errors.New("ticket is not valid for today")

	ErrAgeLimitNotMet = errors.New("visitor does not meet the minimum age")

	ErrVisitAlreadyActiveHere  = errors.New("visitor already has an active visit at this attraction")
	ErrVisitorAlreadyElsewhere = errors.New("visitor has an active visit at another attraction")
	ErrNoActiveVisit           = errors.New("no active visit to close")
)
