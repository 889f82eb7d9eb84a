package errors

import "net/http"

// ErrorCode is the stable machine-readable identifier returned in every error body.
type ErrorCode string

const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
	AuthAccountLocked          ErrorCode = "AUTH_006"
	AuthInvalidRefreshToken    ErrorCode = "AUTH_007"
)

const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidPhone  ErrorCode = "VALIDATION_006"
	ValidationInvalidDate   ErrorCode = "VALIDATION_007"
)

const (
	UserNotFound              ErrorCode = "USER_001"
	UserAlreadyExists         ErrorCode = "USER_002"
	UserInactive              ErrorCode = "USER_003"
	UserInvalidID             ErrorCode = "USER_004"
	UserIncorrectPassword     ErrorCode = "USER_005"
	UserInvalidProfilePicture ErrorCode = "USER_006"
)

const (
	CategoryNotFound         ErrorCode = "CATEGORY_001"
	CategoryAlreadyExists    ErrorCode = "CATEGORY_002"
	CategoryInUse            ErrorCode = "CATEGORY_003"
	CategoryDefaultImmutable ErrorCode = "CATEGORY_004"
	CategoryTypeMismatch     ErrorCode = "CATEGORY_005"
	CategoryInvalidID        ErrorCode = "CATEGORY_006"
)

const (
	TransactionNotFound         ErrorCode = "TRANSACTION_001"
	TransactionInvalidAmount    ErrorCode = "TRANSACTION_002"
	TransactionValidationFailed ErrorCode = "TRANSACTION_003"
	TransactionInvalidType      ErrorCode = "TRANSACTION_004"
	TransactionInvalidID        ErrorCode = "TRANSACTION_005"
	TransactionInvalidFrequency ErrorCode = "TRANSACTION_006"
)

const (
	DashboardInvalidDateRange ErrorCode = "DASHBOARD_001"
	DashboardInvalidLimit     ErrorCode = "DASHBOARD_002"
	DashboardInvalidYear      ErrorCode = "DASHBOARD_003"
)

const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemResourceNotFound   ErrorCode = "SYSTEM_007"
)

const fallbackMessage = "An error occurred"

type codeInfo struct {
	status  int
	message string
}

var registry = map[ErrorCode]codeInfo{
	AuthInvalidCredentials:     {http.StatusUnauthorized, "Invalid email or password"},
	AuthMissingToken:           {http.StatusUnauthorized, "Authorization token is required"},
	AuthExpiredToken:           {http.StatusUnauthorized, "Authorization token has expired"},
	AuthInvalidTokenFormat:     {http.StatusUnauthorized, "Invalid authorization token format"},
	AuthInsufficientPermission: {http.StatusForbidden, "Insufficient permissions to access this resource"},
	AuthAccountLocked:          {http.StatusForbidden, "Account is locked or disabled"},
	AuthInvalidRefreshToken:    {http.StatusUnauthorized, "Refresh token is invalid, expired or revoked"},

	ValidationGeneral:       {http.StatusBadRequest, "Validation failed"},
	ValidationRequiredField: {http.StatusBadRequest, "Required field is missing"},
	ValidationInvalidFormat: {http.StatusBadRequest, "Invalid field format"},
	ValidationOutOfRange:    {http.StatusBadRequest, "Field value is out of allowed range"},
	ValidationInvalidEmail:  {http.StatusBadRequest, "Invalid email address format"},
	ValidationInvalidPhone:  {http.StatusBadRequest, "Invalid phone number format"},
	ValidationInvalidDate:   {http.StatusBadRequest, "Invalid date format or range"},

	UserNotFound:              {http.StatusNotFound, "User not found"},
	UserAlreadyExists:         {http.StatusConflict, "An account with this email already exists"},
	UserInactive:              {http.StatusForbidden, "User account is inactive"},
	UserInvalidID:             {http.StatusBadRequest, "Invalid user ID format"},
	UserIncorrectPassword:     {http.StatusBadRequest, "Current password is incorrect"},
	UserInvalidProfilePicture: {http.StatusBadRequest, "Profile picture must be valid base64 data"},

	CategoryNotFound:         {http.StatusNotFound, "Category not found"},
	CategoryAlreadyExists:    {http.StatusConflict, "A category with this name already exists"},
	CategoryInUse:            {http.StatusConflict, "Category is still used by transactions"},
	CategoryDefaultImmutable: {http.StatusForbidden, "Default categories cannot be modified"},
	CategoryTypeMismatch:     {http.StatusUnprocessableEntity, "Category type does not match the transaction type"},
	CategoryInvalidID:        {http.StatusBadRequest, "Invalid category ID format"},

	TransactionNotFound:         {http.StatusNotFound, "Transaction not found"},
	TransactionInvalidAmount:    {http.StatusBadRequest, "Invalid transaction amount"},
	TransactionValidationFailed: {http.StatusUnprocessableEntity, "Transaction validation failed"},
	TransactionInvalidType:      {http.StatusBadRequest, "Invalid transaction type"},
	TransactionInvalidID:        {http.StatusBadRequest, "Invalid transaction ID format"},
	TransactionInvalidFrequency: {http.StatusBadRequest, "Invalid recurrence frequency"},

	DashboardInvalidDateRange: {http.StatusBadRequest, "Start date must not be after end date"},
	DashboardInvalidLimit:     {http.StatusBadRequest, "Limit is out of allowed range"},
	DashboardInvalidYear:      {http.StatusBadRequest, "Invalid year"},

	SystemInternalError:      {http.StatusInternalServerError, "An unexpected error occurred. Please contact support with trace ID"},
	SystemDatabaseError:      {http.StatusInternalServerError, "Database connection error"},
	SystemServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
	SystemConfigurationError: {http.StatusInternalServerError, "System configuration error"},
	SystemUnexpectedError:    {http.StatusInternalServerError, "An unexpected error occurred"},
	SystemRateLimitExceeded:  {http.StatusTooManyRequests, "Rate limit exceeded. Please try again later"},
	SystemResourceNotFound:   {http.StatusNotFound, "Resource not found"},
}

func GetErrorMessage(code ErrorCode) string {
	if info, ok := registry[code]; ok {
		return info.message
	}
	return fallbackMessage
}

// GetHTTPStatus maps a code to its response status. Unregistered codes are 500.
func GetHTTPStatus(code ErrorCode) int {
	if info, ok := registry[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func IsValidErrorCode(code ErrorCode) bool {
	_, ok := registry[code]
	return ok
}
