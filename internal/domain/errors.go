package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password does not meet requirements")
	ErrInvalidUserData    = errors.New("invalid user data")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Equipment errors
var (
	ErrEquipmentNotFound      = errors.New("equipment not found")
	ErrEquipmentAlreadyExists = errors.New("equipment already exists")
	ErrEquipmentInUse         = errors.New("equipment has maintenance records")
	ErrInvalidEquipmentData   = errors.New("invalid equipment data")
)

// MaintenancePlan errors
var (
	ErrPlanNotFound    = errors.New("maintenance plan not found")
	ErrPlanHasStages   = errors.New("maintenance plan has stages")
	ErrInvalidPlanData = errors.New("invalid maintenance plan data")
)

// MaintenanceStage errors
var (
	ErrStageNotFound       = errors.New("maintenance stage not found")
	ErrInvalidStageData    = errors.New("invalid maintenance stage data")
	ErrDuplicateKilometers = errors.New("stage with the same kilometers already exists in plan")
	ErrDuplicateDays       = errors.New("stage with the same days already exists in plan")
	ErrStageSetMismatch    = errors.New("stage ids do not match the plan stage set")
)

// MaintenanceType errors
var (
	ErrTypeNotFound      = errors.New("maintenance type not found")
	ErrTypeAlreadyExists = errors.New("maintenance type with the same name already exists here")
	ErrTypeHasChildren   = errors.New("maintenance type has children")
	ErrTypeCycle         = errors.New("maintenance type cannot be moved under its own descendant")
	ErrInvalidTypeData   = errors.New("invalid maintenance type data")
)

// MaintenanceRecord errors
var (
	ErrRecordNotFound    = errors.New("maintenance record not found")
	ErrInvalidRecordData = errors.New("invalid maintenance record data")
	ErrInvalidStatus     = errors.New("invalid maintenance record status")
	ErrInvalidPriority   = errors.New("invalid maintenance record priority")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

// MileageRecord errors
var (
	ErrMileageNotFound      = errors.New("mileage record not found")
	ErrMileageAlreadyExists = errors.New("mileage record for this date already exists")
	ErrInvalidMileageData   = errors.New("invalid mileage record data")
)

// Activity errors
var (
	ErrActivityNotFound    = errors.New("activity not found")
	ErrActivityInUse       = errors.New("activity is referenced by maintenance records")
	ErrInvalidActivityData = errors.New("invalid activity data")
)

// SparePart errors
var (
	ErrSparePartNotFound      = errors.New("spare part not found")
	ErrSparePartAlreadyExists = errors.New("spare part already exists")
	ErrSparePartInUse         = errors.New("spare part is referenced by maintenance records")
	ErrInvalidSparePartData   = errors.New("invalid spare part data")
)

// Pagination errors
var (
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)
