package apierrors

// Message ids in the translator catalogs.
const (
	MsgInvalidTaskID      = "invalidTaskID"
	MsgInvalidCategoryID  = "invalidCategoryID"
	MsgInvalidPayload     = "invalidPayload"
	MsgInvalidQuery       = "invalidQuery"
	MsgValidationFailed   = "validationFailed"
	MsgTaskNotFound       = "taskNotFound"
	MsgCategoryNotFound   = "categoryNotFound"
	MsgCategoryNameTaken  = "categoryNameTaken"
	MsgStorageFailure     = "storageFailure"
	MsgStorageUnavailable = "storageUnavailable"
	MsgRouteNotFound      = "routeNotFound"
)
