package model

type ConversationStatus string

const (
	ConversationStatusActive         ConversationStatus = "ACTIVE"
	ConversationStatusBuyerApproved  ConversationStatus = "BUYER_APPROVED"
	ConversationStatusSellerApproved ConversationStatus = "SELLER_APPROVED"
	ConversationStatusCompleted      ConversationStatus = "COMPLETED"
	ConversationStatusCancelled      ConversationStatus = "CANCELLED"
)

var conversationTransitions = map[ConversationStatus][]ConversationStatus{
	ConversationStatusActive:         {ConversationStatusBuyerApproved, ConversationStatusSellerApproved, ConversationStatusCancelled},
	ConversationStatusBuyerApproved:  {ConversationStatusCompleted, ConversationStatusCancelled},
	ConversationStatusSellerApproved: {ConversationStatusCompleted, ConversationStatusCancelled},
}

func (s ConversationStatus) Valid() bool {
	switch s {
	case ConversationStatusActive, ConversationStatusBuyerApproved, ConversationStatusSellerApproved,
		ConversationStatusCompleted, ConversationStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s ConversationStatus) IsTerminal() bool {
	return s == ConversationStatusCompleted || s == ConversationStatusCancelled
}

func (s ConversationStatus) CanTransitionTo(next ConversationStatus) bool {
	for _, allowed := range conversationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
