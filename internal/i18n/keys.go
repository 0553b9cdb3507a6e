// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"
	KeyInfo    = "info"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccessDenied       = "auth.access_denied"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User Management
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductNotFound   = "product.not_found"
	KeyProductLowStock   = "product.low_stock"
	KeyStockInsufficient = "stock.insufficient"

	// Sales
	KeySaleCompleted           = "sale.completed"
	KeySaleConcurrencyConflict = "sale.concurrency_conflict"

	// Change requests
	KeyRequestSubmitted = "request.submitted"
	KeyRequestApproved  = "request.approved"
	KeyRequestRejected  = "request.rejected"
	KeyRequestNotFound  = "request.not_found"
	KeyRequestResolved  = "request.already_resolved"

	// Payouts
	KeyPayoutRecorded      = "payout.recorded"
	KeyPayoutInvalidAmount = "payout.invalid_amount"

	// Customers
	KeyCustomerNotFound = "customer.not_found"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationTooShort = "validation.too_short"
	KeyValidationTooLong  = "validation.too_long"
	KeyValidationEmail    = "validation.invalid_email"
	KeyValidationPassword = "validation.invalid_password"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Notifications
	KeyNotificationSent   = "notification.sent"
	KeyNotificationFailed = "notification.failed"
)
