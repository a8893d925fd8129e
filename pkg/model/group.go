package model

import "time"

type Group struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Members   []Member  `json:"members" bson:"members" validate:"omitempty,dive"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type Member struct {
	CoOwnerID string `json:"co_owner_id" bson:"co_owner_id" validate:"required,mongodb"`
	Name      string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Role      string `json:"role,omitempty" bson:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

// Vote is a group decision poll. Result stays nil until enough ballots are
// cast; it then tracks whether a strict majority agreed, recomputed on every
// ballot.
type Vote struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GroupID     string       `json:"group_id" bson:"group_id" validate:"required,mongodb"`
	Topic       string       `json:"topic" bson:"topic" validate:"required,min=2,max=200"`
	Result      *bool        `json:"result,omitempty" bson:"result,omitempty"`
	MemberVotes []MemberVote `json:"member_votes" bson:"member_votes"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type MemberVote struct {
	MemberID string `json:"member_id" bson:"member_id" validate:"required"`
	Agree    bool   `json:"agree" bson:"agree"`
}

type Ballot struct {
	MemberID string `json:"member_id" validate:"required"`
	Agree    bool   `json:"agree"`
}
