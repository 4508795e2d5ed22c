package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrCondominiumNotFound = errors.New("condominium not found")
	ErrUnitNotFound        = errors.New("unit not found")
	ErrChargeNotFound      = errors.New("charge not found")
	ErrStatementNotFound   = errors.New("statement not found")
	ErrLabelRequired       = errors.New("label is required")
	ErrLabelTooLong        = errors.New("label exceeds maximum length")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrInvalidCategory     = errors.New("invalid charge category")
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrNegativeShare       = errors.New("ownership share must not be negative")
	ErrNegativeAdvance     = errors.New("monthly advance must not be negative")
	ErrNegativeReading     = errors.New("meter reading must not be negative")
	ErrInvalidMeterReading = errors.New("water meter end reading precedes start reading")
	ErrInvalidPeriod       = errors.New("period start must not be after period end")
	ErrPeriodRequired      = errors.New("service period is required for this category")
	ErrInvalidMonths       = errors.New("months in period must be at least 1")
	ErrWaterPriceRequired  = errors.New("water unit price must be positive for water charges")
	ErrBillingDateRequired = errors.New("billing date is required")
)

// Validation constants
const (
	MaxUnitLabelLength       = 255
	MaxCondominiumNameLength = 255
	MaxDescriptionLength     = 1000
)
