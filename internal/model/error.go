package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeInvalidID               = "INVALID_ID"
	ErrCodeInvalidQuery            = "INVALID_QUERY"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeEmptyOrder              = "EMPTY_ORDER"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeInvalidSale             = "INVALID_SALE"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeSaleNotFound            = "SALE_NOT_FOUND"
	ErrCodePaymentMethodNotFound   = "PAYMENT_METHOD_NOT_FOUND"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidJSON             = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrInvalidID               = NewDomainError(ErrCodeInvalidID, "Identifier must be a positive integer")
	ErrInvalidQuery            = NewDomainError(ErrCodeInvalidQuery, "Query parameter is invalid")
	ErrMissingField            = NewDomainError(ErrCodeMissingField, "A required field is missing")
	ErrEmptyOrder              = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrInvalidQuantity         = NewDomainError(ErrCodeInvalidQuantity, "Quantity is out of range")
	ErrInvalidStatus           = NewDomainError(ErrCodeInvalidStatus, "Unknown status value")
	ErrInvalidStatusTransition = NewDomainError(ErrCodeInvalidStatusTransition, "Order status cannot change from a terminal state")
	ErrInvalidSale             = NewDomainError(ErrCodeInvalidSale, "Sale override is invalid")
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrSaleNotFound            = NewDomainError(ErrCodeSaleNotFound, "Product sale not found")
	ErrPaymentMethodNotFound   = NewDomainError(ErrCodePaymentMethodNotFound, "No active payment method configured")
)
