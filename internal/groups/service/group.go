package service

import (
	"context"
	"errors"
	"sync"

	groupserrors "evshare/internal/groups/errors"
	"evshare/internal/groups/repository"
	"evshare/internal/groups/validator"
	"evshare/pkg/config"
	apperrors "evshare/pkg/errors"
	"evshare/pkg/model"
	"evshare/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type GroupService interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	ListGroups(ctx context.Context, limit int, offset int64) ([]*model.Group, int64, error)
	CreateVote(ctx context.Context, groupID string, vote *model.Vote) error
	CastVote(ctx context.Context, voteID string, ballot *model.Ballot) (*model.Vote, error)
	ListVotes(ctx context.Context, groupID string) ([]*model.Vote, error)
}

type groupService struct {
	groups    repository.GroupRepository
	votes     repository.VoteRepository
	validator *validator.GroupValidator
	cfg       *config.Config
}

func NewGroupService(
	groups repository.GroupRepository,
	votes repository.VoteRepository,
	validator *validator.GroupValidator,
	cfg *config.Config,
) GroupService {
	return &groupService{
		groups:    groups,
		votes:     votes,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, group *model.Group) error {
	group.Name = sanitizer.NormalizeName(group.Name)
	for i := range group.Members {
		group.Members[i].Name = sanitizer.NormalizeName(group.Members[i].Name)
	}

	if err := s.validator.ValidateGroup(group); err != nil {
		s.cfg.Log.Warn("Group validation failed", "error", err)
		return apperrors.Validation("Group validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.groups.Create(ctx, group); err != nil {
		s.cfg.Log.Error("Failed to create group", "error", err)
		return apperrors.Internal("Failed to create group", err)
	}

	s.cfg.Log.Info("Group created successfully", "id", group.ID, "name", group.Name)
	return nil
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Group ID cannot be empty")
	}

	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapGroupError(err, id)
	}

	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, limit int, offset int64) ([]*model.Group, int64, error) {
	var count int64
	var groups []*model.Group
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.groups.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count groups", "error", errCount)
			errCount = apperrors.Internal("Failed to count groups", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		groups, errFind = s.groups.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list groups", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve groups", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return groups, count, nil
}

func (s *groupService) CreateVote(ctx context.Context, groupID string, vote *model.Vote) error {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return s.mapGroupError(err, groupID)
	}

	vote.GroupID = groupID
	vote.Topic = sanitizer.TrimAndNormalize(vote.Topic)
	vote.Result = nil
	if vote.MemberVotes == nil {
		vote.MemberVotes = []model.MemberVote{}
	}

	if err := s.validator.ValidateVote(vote); err != nil {
		s.cfg.Log.Warn("Vote validation failed", "group_id", groupID, "error", err)
		return apperrors.Validation("Vote validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.votes.Create(ctx, vote); err != nil {
		s.cfg.Log.Error("Failed to create vote", "group_id", groupID, "error", err)
		return apperrors.Internal("Failed to create vote", err)
	}

	s.cfg.Log.Info("Vote created successfully", "id", vote.ID, "group_id", groupID, "topic", vote.Topic)
	return nil
}

// CastVote upserts the member's ballot; re-voting overwrites the previous
// choice. Once the quorum is reached, the result is recomputed on every cast
// as a strict majority of all ballots.
func (s *groupService) CastVote(ctx context.Context, voteID string, ballot *model.Ballot) (*model.Vote, error) {
	if voteID == "" {
		return nil, apperrors.InvalidInput("Vote ID cannot be empty")
	}

	if err := s.validator.ValidateBallot(ballot); err != nil {
		return nil, apperrors.Validation("Ballot validation failed", map[string]any{"error": err.Error()})
	}

	var updated *model.Vote
	err := s.votes.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		vote, err := s.votes.FindByID(sessCtx, voteID)
		if err != nil {
			return s.mapVoteError(err, voteID)
		}

		replaced := false
		for i := range vote.MemberVotes {
			if vote.MemberVotes[i].MemberID == ballot.MemberID {
				vote.MemberVotes[i].Agree = ballot.Agree
				replaced = true
				break
			}
		}
		if !replaced {
			vote.MemberVotes = append(vote.MemberVotes, model.MemberVote{
				MemberID: ballot.MemberID,
				Agree:    ballot.Agree,
			})
		}

		s.recomputeResult(vote)

		if _, err := s.votes.Update(sessCtx, voteID, vote); err != nil {
			return apperrors.Internal("Failed to record ballot", err)
		}

		updated = vote
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cast vote", "vote_id", voteID, "member_id", ballot.MemberID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Ballot recorded", "vote_id", voteID, "member_id", ballot.MemberID, "agree", ballot.Agree)
	return updated, nil
}

func (s *groupService) ListVotes(ctx context.Context, groupID string) ([]*model.Vote, error) {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return nil, s.mapGroupError(err, groupID)
	}

	votes, err := s.votes.FindByGroup(ctx, groupID)
	if err != nil {
		s.cfg.Log.Error("Failed to list votes", "group_id", groupID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve votes", err)
	}

	return votes, nil
}

// recomputeResult leaves Result nil until the ballot count reaches the
// quorum, then sets it to whether a strict majority agreed.
func (s *groupService) recomputeResult(vote *model.Vote) {
	total := len(vote.MemberVotes)
	if total < s.cfg.VoteQuorum {
		vote.Result = nil
		return
	}

	agree := 0
	for _, mv := range vote.MemberVotes {
		if mv.Agree {
			agree++
		}
	}

	result := agree > total/2
	vote.Result = &result
}

func (s *groupService) mapGroupError(err error, id string) error {
	if errors.Is(err, groupserrors.ErrGroupNotFound) {
		return apperrors.NotFoundWithID("Group", id)
	}
	if errors.Is(err, groupserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid group ID format")
	}
	return apperrors.Internal("Failed to retrieve group", err)
}

func (s *groupService) mapVoteError(err error, id string) error {
	if errors.Is(err, groupserrors.ErrVoteNotFound) {
		return apperrors.NotFoundWithID("Vote", id)
	}
	if errors.Is(err, groupserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid vote ID format")
	}
	return apperrors.Internal("Failed to retrieve vote", err)
}
