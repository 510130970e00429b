package service

import "github.com/ssrocks/rishop-backend/internal/model"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// ResolveRole reports whether userID acts as buyer or seller in cv.
func ResolveRole(cv *model.Conversation, userID uint64) (Role, error) {
	switch {
	case userID == 0:
		return "", errNotParticipant
	case cv.BuyerID == userID:
		return RoleBuyer, nil
	case cv.SellerID == userID:
		return RoleSeller, nil
	}
	return "", errNotParticipant
}

func (r Role) approvedStatus() model.ConversationStatus {
	if r == RoleBuyer {
		return model.ConversationStatusBuyerApproved
	}
	return model.ConversationStatusSellerApproved
}

// otherApprovedStatus is the status meaning the counterpart approved first.
func (r Role) otherApprovedStatus() model.ConversationStatus {
	if r == RoleBuyer {
		return model.ConversationStatusSellerApproved
	}
	return model.ConversationStatusBuyerApproved
}

func (r Role) label() string {
	if r == RoleBuyer {
		return "Buyer"
	}
	return "Seller"
}

// CanApprove reports whether role may still approve a conversation in status.
func CanApprove(status model.ConversationStatus, role Role) bool {
	return !status.IsTerminal() && status != role.approvedStatus()
}

func CanCancel(status model.ConversationStatus) bool {
	return !status.IsTerminal()
}

// nextApprovalStatus applies one approval by role to the current status.
func nextApprovalStatus(status model.ConversationStatus, role Role) (model.ConversationStatus, error) {
	switch status {
	case model.ConversationStatusCompleted:
		return "", errAlreadyCompleted
	case model.ConversationStatusCancelled:
		return "", errApproveCancelled
	case role.approvedStatus():
		return "", errAlreadyApproved
	case role.otherApprovedStatus():
		return model.ConversationStatusCompleted, nil
	case model.ConversationStatusActive:
		return role.approvedStatus(), nil
	}
	return "", policy("invalid_status", "Conversation is in an unknown state")
}
