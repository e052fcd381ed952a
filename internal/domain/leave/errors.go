package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrInvalidStatus                = errors.New("leave request can only be approved or rejected")
	ErrOverlappingLeave             = errors.New("leave request overlaps an existing pending or approved request")
)
