package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/internal/store"
	apperrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/logger"
	"github.com/foreningshub/backend/pkg/metrics"
	"github.com/foreningshub/backend/pkg/validate"
)

var (
	// ErrAcceptNameRequired is returned when the acceptance form has no full name.
	ErrAcceptNameRequired = apperrors.NewBadRequest("Fullständigt namn krävs")
	// ErrAcceptBirthDateInvalid is returned for a malformed or future birth date.
	ErrAcceptBirthDateInvalid = apperrors.NewBadRequest("Ogiltigt födelsedatum")
	// ErrAcceptPhoneInvalid is returned for a malformed phone number.
	ErrAcceptPhoneInvalid = apperrors.NewBadRequest("Ogiltigt telefonnummer")
	// ErrPasswordMismatch is returned when the two password fields differ.
	ErrPasswordMismatch = apperrors.NewBadRequest("Lösenorden matchar inte")
	// ErrPasswordTooShort is returned for passwords under six characters.
	ErrPasswordTooShort = apperrors.NewBadRequest("Lösenordet måste vara minst 6 tecken")

	// ErrAccountCreationFailed reports a failure in the account step.
	ErrAccountCreationFailed = apperrors.New("ACCOUNT_CREATION_FAILED", "Kunde inte skapa användarkonto", http.StatusInternalServerError)
	// ErrMemberCreationFailed reports that the account exists but the
	// member record could not be written.
	ErrMemberCreationFailed = apperrors.New("MEMBER_CREATION_FAILED", "Ett fel uppstod vid skapande av medlemskonto. Kontakta administratören.", http.StatusInternalServerError)
	// ErrMembershipLinkFailed reports that the account and member exist
	// but the association link could not be written.
	ErrMembershipLinkFailed = apperrors.New("MEMBERSHIP_LINK_FAILED", "Kunde inte länka användaren till föreningen. Kontakta administratören för hjälp.", http.StatusInternalServerError)
)

const minAcceptPasswordLength = 6

// AcceptanceService drives the self-service flow that turns a pending
// invitation into an account, a member record, and a membership link.
// The steps run sequentially and are not rolled back on partial failure;
// each step fails with its own message so support can tell how far the
// flow got.
type AcceptanceService struct {
	store       store.Store
	invitations *InvitationService
	clock       func() time.Time
	log         *zap.Logger
}

// AcceptanceOption customises an AcceptanceService.
type AcceptanceOption func(*AcceptanceService)

// WithAcceptanceClock overrides the time source, mainly for tests.
func WithAcceptanceClock(clock func() time.Time) AcceptanceOption {
	return func(s *AcceptanceService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewAcceptanceService constructs an AcceptanceService.
func NewAcceptanceService(st store.Store, invitations *InvitationService, opts ...AcceptanceOption) (*AcceptanceService, error) {
	if st == nil {
		return nil, errors.New("acceptance service: store is required")
	}
	if invitations == nil {
		return nil, errors.New("acceptance service: invitation service is required")
	}

	svc := &AcceptanceService{
		store:       st,
		invitations: invitations,
		clock:       time.Now,
		log:         logger.WithModule("acceptance"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AcceptancePrefill carries the form defaults shown to an invitee.
type AcceptancePrefill struct {
	Invitation *models.Invitation `json:"invitation"`
	Email      string             `json:"email"`
	FullName   string             `json:"full_name,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	BirthDate  string             `json:"birth_date,omitempty"`
}

// Prefill resolves a token and returns the form defaults. Direct
// invitation columns win; the raw imported row in member_data fills the
// gaps for bulk-created invitations.
func (s *AcceptanceService) Prefill(ctx context.Context, token string) (*AcceptancePrefill, error) {
	invitation, err := s.invitations.LookupByToken(ensureContext(ctx), token)
	if err != nil {
		return nil, err
	}

	prefill := &AcceptancePrefill{
		Invitation: invitation,
		Email:      invitation.Email,
		FullName:   invitation.FullName,
		Phone:      invitation.Phone,
		BirthDate:  invitation.BirthDate,
	}
	if prefill.FullName == "" {
		prefill.FullName = invitation.MemberDataString("full_name")
	}
	if prefill.Phone == "" {
		prefill.Phone = invitation.MemberDataString("phone")
	}
	if prefill.BirthDate == "" {
		prefill.BirthDate = invitation.MemberDataString("birth_date")
	}
	return prefill, nil
}

// AcceptInput carries the submitted acceptance form.
type AcceptInput struct {
	Token           string
	FullName        string
	Phone           string
	BirthDate       string
	Password        string
	PasswordConfirm string
}

// AcceptResult is returned after a completed acceptance.
type AcceptResult struct {
	UserID  string         `json:"user_id"`
	Member  *models.Member `json:"member"`
	Message string         `json:"message"`
}

// Accept validates the form, then runs the four-step chain: account,
// member record, membership link, invitation status. Later steps do not
// undo earlier ones; a step-3 failure leaves a real account and member
// behind, which the error message owns up to.
func (s *AcceptanceService) Accept(ctx context.Context, input AcceptInput) (*AcceptResult, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.invitations.LookupByToken(ctx, input.Token)
	if err != nil {
		metrics.InvitationAcceptances.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := validateAcceptForm(input, s.clock()); err != nil {
		return nil, err
	}

	userID, err := s.store.CreateAccount(ctx, invitation.Email, input.Password)
	if err != nil {
		metrics.InvitationAcceptances.WithLabelValues("account_failed").Inc()
		return nil, ErrAccountCreationFailed.WithInternal(err)
	}

	member, err := s.store.CreateMember(ctx, store.CreateMemberRecord{
		AssociationID: invitation.AssociationID,
		FullName:      input.FullName,
		Email:         invitation.Email,
		Phone:         input.Phone,
		BirthDate:     input.BirthDate,
		Status:        models.StatusActive,
		InvitationID:  invitation.ID,
		UserID:        userID,
		JoinedDate:    s.clock(),
	})
	if err != nil {
		metrics.InvitationAcceptances.WithLabelValues("member_failed").Inc()
		return nil, ErrMemberCreationFailed.WithInternal(err)
	}

	err = s.store.CreateMembership(ctx, store.CreateMembershipRecord{
		AssociationID: invitation.AssociationID,
		UserID:        userID,
		Role:          models.RoleMember,
		Status:        models.StatusActive,
		JoinedAt:      s.clock(),
	})
	if err != nil {
		metrics.InvitationAcceptances.WithLabelValues("link_failed").Inc()
		return nil, ErrMembershipLinkFailed.WithInternal(err)
	}

	acceptedAt := s.clock()
	if err := s.store.UpdateInvitationStatus(ctx, invitation.ID, models.InvitationAccepted, &acceptedAt); err != nil {
		// The account, member and membership already exist; the stale
		// pending status is recoverable by an administrator.
		s.log.Warn("failed to mark invitation accepted",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err))
	}

	metrics.InvitationAcceptances.WithLabelValues("accepted").Inc()

	return &AcceptResult{
		UserID:  userID,
		Member:  member,
		Message: fmt.Sprintf("Välkommen till föreningen, %s!", input.FullName),
	}, nil
}

func validateAcceptForm(input AcceptInput, now time.Time) error {
	if input.FullName == "" {
		return ErrAcceptNameRequired
	}
	if input.BirthDate != "" && !validate.PastDateAt(input.BirthDate, now) {
		return ErrAcceptBirthDateInvalid
	}
	if input.Phone != "" && !validate.Phone(input.Phone) {
		return ErrAcceptPhoneInvalid
	}
	if input.Password != input.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if len(input.Password) < minAcceptPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
