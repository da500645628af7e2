package dinner

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrTryAgain reports a membership mutation that conflicted twice with
// concurrent writers. Transient: the caller should retry.
var ErrTryAgain = errors.New("membership changed concurrently, try again")

// Action is the tagged request variant the boundary hands the service. The
// service never sees raw request input.
type Action interface {
	isAction()
}

// Join moves the user into the dinner group for RestaurantID.
type Join struct {
	RestaurantID string
}

// Leave removes the user from whatever group they are in.
type Leave struct{}

func (Join) isAction()  {}
func (Leave) isAction() {}

type MembershipRepository interface {
	JoinGroup(ctx context.Context, userID string, restaurantID string) error
	LeaveGroup(ctx context.Context, userID string) error
}

// AttendanceService runs the per-user state machine: NotAttending or
// Attending(restaurantID). All mutations go through the repository's atomic
// join/leave, so at most one membership row exists per user at all times.
type AttendanceService struct {
	memberships MembershipRepository
	logger      *zap.Logger
}

func NewAttendanceService(memberships MembershipRepository, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{memberships: memberships, logger: logger}
}

func (s *AttendanceService) Apply(ctx context.Context, userID string, action Action) error {
	switch act := action.(type) {
	case Join:
		return s.join(ctx, userID, act.RestaurantID)
	case Leave:
		return s.memberships.LeaveGroup(ctx, userID)
	default:
		return errors.New("unknown attendance action")
	}
}

// join retries once when a concurrent first-join to the same venue or a
// concurrent mutation for the same user trips a uniqueness constraint; a
// second conflict surfaces as ErrTryAgain.
func (s *AttendanceService) join(ctx context.Context, userID string, restaurantID string) error {
	err := s.memberships.JoinGroup(ctx, userID, restaurantID)
	if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	s.logger.Info("join conflicted, retrying once",
		zap.String("user_id", userID), zap.String("restaurant_id", restaurantID), zap.Error(err))

	err = s.memberships.JoinGroup(ctx, userID, restaurantID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTryAgain
	}

	return err
}
