package logger

// Standard field names for consistent logging.
const (
	FieldService   = "service"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldOrderID   = "order_id"
	FieldSlotID    = "slot_id"
	FieldRequestID = "request_id"
)
