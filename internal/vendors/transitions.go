package vendors

import (
	"strings"

	"github.com/angelmondragon/vendorkyc-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
)

const (
	SubmittedComment   = "Vendor application submitted"
	ApprovedComment    = "Application approved"
	ResubmittedComment = "Vendor uploaded new documents after rejection. Pending re-review."
)

// EventKind is a request to move an application through its lifecycle.
type EventKind string

const (
	EventApprove  EventKind = "approve"
	EventReject   EventKind = "reject"
	EventResubmit EventKind = "resubmit"
)

// Event carries the kind plus the rejection reason for EventReject.
type Event struct {
	Kind   EventKind
	Reason string
}

// Review describes what happens to reviewed_at/reviewed_by.
type Review int

const (
	ReviewStamp Review = iota
	ReviewClear
)

// Transition is the full effect of applying an event: the next status, the review
// stamp and the history entry to append.
type Transition struct {
	From            enums.VendorStatus
	To              enums.VendorStatus
	Review          Review
	RejectionReason *string
	Comment         string
	System          bool
}

var transitionTable = map[enums.VendorStatus]map[EventKind]enums.VendorStatus{
	enums.VendorStatusPending: {
		EventApprove: enums.VendorStatusApproved,
		EventReject:  enums.VendorStatusRejected,
	},
	enums.VendorStatusRejected: {
		EventResubmit: enums.VendorStatusPending,
		EventApprove:  enums.VendorStatusApproved,
		EventReject:   enums.VendorStatusRejected,
	},
	enums.VendorStatusApproved: {
		EventReject: enums.VendorStatusRejected,
	},
}

// Apply maps (current, event) to a Transition. Undefined pairs return STATE_CONFLICT;
// a reject without a reason returns VALIDATION_ERROR.
func Apply(current enums.VendorStatus, event Event) (Transition, error) {
	reason := strings.TrimSpace(event.Reason)
	if event.Kind == EventReject && reason == "" {
		return Transition{}, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	next, ok := transitionTable[current][event.Kind]
	if !ok {
		return Transition{}, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
			WithDetails(map[string]any{"from": current, "event": event.Kind})
	}

	t := Transition{From: current, To: next}
	switch event.Kind {
	case EventApprove:
		t.Review = ReviewStamp
		t.Comment = ApprovedComment
	case EventReject:
		t.Review = ReviewStamp
		t.RejectionReason = &reason
		t.Comment = reason
	case EventResubmit:
		t.Review = ReviewClear
		t.Comment = ResubmittedComment
		t.System = true
	}
	return t, nil
}
