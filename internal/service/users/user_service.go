package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucavt/carpool/internal/auth"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/lucavt/carpool/internal/repository"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	RateUser(ctx context.Context, input RateInput) error
	ReportUser(ctx context.Context, input ReportInput) error
	Notifications(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
}

type UserService struct {
	users         repository.UserRepository
	reviews       repository.ReviewRepository
	notifications repository.NotificationRepository
	tokens        *auth.TokenManager
}

type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	Name          string
	Phone         string
	IsDriver      bool
	Vehicle       string
	DriverLicense string
}

type RateInput struct {
	OriginUserID int64
	TargetUserID int64
	Description  string
	Rating       float64
}

type ReportInput struct {
	ReporterID int64
	ReportedID int64
	Reason     string
}

func NewUserService(
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	notifications repository.NotificationRepository,
	tokens *auth.TokenManager,
) *UserService {
	return &UserService{
		users:         users,
		reviews:       reviews,
		notifications: notifications,
		tokens:        tokens,
	}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  hash,
		Name:          input.Name,
		Phone:         input.Phone,
		Role:          "user",
		IsDriver:      input.IsDriver,
		Vehicle:       input.Vehicle,
		DriverLicense: input.DriverLicense,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// RateUser stores a review and recomputes the target's rating as the mean of
// every review targeting them.
func (s *UserService) RateUser(ctx context.Context, input RateInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}

	target, err := s.users.GetByID(ctx, input.TargetUserID)
	if err != nil {
		return err
	}

	review := &domain.Review{
		OriginUserID: input.OriginUserID,
		TargetUserID: target.ID,
		Description:  input.Description,
		Rating:       input.Rating,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return err
	}

	avg, err := s.reviews.AverageForUser(ctx, target.ID)
	if err != nil {
		return err
	}
	return s.users.UpdateRating(ctx, target.ID, avg)
}

func (s *UserService) ReportUser(ctx context.Context, input ReportInput) error {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	if input.ReporterID == input.ReportedID {
		return domain.ErrSelfReport
	}

	if _, err := s.users.GetByID(ctx, input.ReportedID); err != nil {
		return err
	}

	return s.reviews.CreateReport(ctx, &domain.Report{
		ReporterID: input.ReporterID,
		ReportedID: input.ReportedID,
		Reason:     reason,
	})
}

func (s *UserService) Notifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func (s *UserService) MarkNotificationRead(ctx context.Context, id, userID int64) (*domain.Notification, error) {
	return s.notifications.MarkRead(ctx, id, userID)
}

func (s *UserService) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

var _ UserUseCase = (*UserService)(nil)
