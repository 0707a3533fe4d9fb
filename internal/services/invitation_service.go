package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/foreningshub/backend/internal/importer"
	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/internal/store"
	"github.com/foreningshub/backend/pkg/crypto"
	apperrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/logger"
	"github.com/foreningshub/backend/pkg/mail"
	"github.com/foreningshub/backend/pkg/metrics"
	"github.com/foreningshub/backend/pkg/validate"
)

var (
	// ErrInviteEmailRequired is returned when the single-invite form has no email.
	ErrInviteEmailRequired = apperrors.NewBadRequest("E-postadress krävs")
	// ErrInviteEmailInvalid is returned when the email does not parse.
	ErrInviteEmailInvalid = apperrors.NewBadRequest("Ogiltig e-postadress")
	// ErrInvitePhoneInvalid is returned when the optional phone number is malformed.
	ErrInvitePhoneInvalid = apperrors.NewBadRequest("Ogiltigt telefonnummer")
	// ErrInviteBirthDateInvalid is returned when the optional birth date is malformed or in the future.
	ErrInviteBirthDateInvalid = apperrors.NewBadRequest("Ogiltigt födelsedatum")
	// ErrInviteForbidden is returned when the actor may not invite members.
	ErrInviteForbidden = apperrors.NewForbidden("Du har inte behörighet att bjuda in medlemmar")
	// ErrImportHasErrors blocks a bulk commit while validation errors remain.
	ErrImportHasErrors = apperrors.NewBadRequest("Vänligen rätta till alla fel innan import")
	// ErrImportEmpty blocks a bulk commit without any rows.
	ErrImportEmpty = apperrors.NewBadRequest("Inga medlemmar att importera")

	// ErrInvitationNotFound covers both a missing token and one that never existed.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Inbjudan hittades inte eller är ogiltig", http.StatusNotFound)
	// ErrInvitationAlreadyAccepted is returned for tokens that were consumed.
	ErrInvitationAlreadyAccepted = apperrors.New("INVITATION_ACCEPTED", "Denna inbjudan har redan accepterats", http.StatusConflict)
	// ErrInvitationExpired is returned for tokens past their deadline.
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "Denna inbjudan har gått ut", http.StatusGone)
)

const (
	defaultInviteExpiry    = 7 * 24 * time.Hour
	defaultInviteTokenSize = 32
)

// InvitationService owns the invitation lifecycle: creation (single and
// bulk), public token lookup, and the expiry transition.
type InvitationService struct {
	store     store.Store
	mailer    mail.Mailer
	clock     func() time.Time
	expiry    time.Duration
	tokenSize int
	baseURL   string
	log       *zap.Logger
}

// InvitationOption customises an InvitationService.
type InvitationOption func(*InvitationService)

// WithInviteClock overrides the time source, mainly for tests.
func WithInviteClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithInviteExpiry overrides how long new invitations stay valid.
func WithInviteExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteTokenSize overrides the random token length in bytes.
func WithInviteTokenSize(n int) InvitationOption {
	return func(s *InvitationService) {
		if n > 0 {
			s.tokenSize = n
		}
	}
}

// WithInviteBaseURL sets the public base URL used in invitation links.
func WithInviteBaseURL(u string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = u
	}
}

// WithInviteMailer attaches an outbound mailer. Delivery is best effort;
// invitation creation never fails because mail could not be sent.
func WithInviteMailer(m mail.Mailer) InvitationOption {
	return func(s *InvitationService) {
		s.mailer = m
	}
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(st store.Store, opts ...InvitationOption) (*InvitationService, error) {
	if st == nil {
		return nil, errors.New("invitation service: store is required")
	}

	svc := &InvitationService{
		store:     st,
		clock:     time.Now,
		expiry:    defaultInviteExpiry,
		tokenSize: defaultInviteTokenSize,
		log:       logger.WithModule("invitations"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SingleInviteInput carries the single-invite form fields.
type SingleInviteInput struct {
	AssociationID string
	ActorID       string
	Email         string
	FullName      string
	Phone         string
	BirthDate     string
}

// InviteResult is returned after a successful single invitation.
type InviteResult struct {
	Invitation *models.Invitation `json:"invitation"`
	Link       string             `json:"link,omitempty"`
	Message    string             `json:"message"`
}

// Invite creates one invitation after validating the form and checking
// that the actor holds a managing role in the association.
func (s *InvitationService) Invite(ctx context.Context, input SingleInviteInput) (*InviteResult, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, ErrInviteEmailRequired
	}
	if !validate.Email(email) {
		return nil, ErrInviteEmailInvalid
	}
	if input.Phone != "" && !validate.Phone(input.Phone) {
		return nil, ErrInvitePhoneInvalid
	}
	if input.BirthDate != "" && !validate.PastDateAt(input.BirthDate, s.clock()) {
		return nil, ErrInviteBirthDateInvalid
	}

	if input.ActorID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.requireManager(ctx, input.AssociationID, input.ActorID); err != nil {
		return nil, err
	}

	token, err := crypto.GenerateToken(s.tokenSize)
	if err != nil {
		return nil, fmt.Errorf("invitation service: generate token: %w", err)
	}

	invitation, err := s.store.CreateInvitation(ctx, store.CreateInvitationRecord{
		AssociationID: input.AssociationID,
		Email:         email,
		FullName:      input.FullName,
		Phone:         input.Phone,
		BirthDate:     input.BirthDate,
		Token:         token,
		CreatedBy:     input.ActorID,
		ExpiresAt:     s.clock().Add(s.expiry),
	})
	if err != nil {
		return nil, fmt.Errorf("invitation service: create invitation: %w", err)
	}

	metrics.InvitationsCreated.WithLabelValues("single").Inc()
	s.deliver(ctx, invitation)

	return &InviteResult{
		Invitation: invitation,
		Link:       s.inviteLink(invitation.Token),
		Message:    fmt.Sprintf("Inbjudan skickad till %s", email),
	}, nil
}

// Preview parses an uploaded CSV file and returns the rows together with
// any validation errors, without writing anything.
func (s *InvitationService) Preview(ctx context.Context, associationID, actorID string, r io.Reader) (importer.Preview, error) {
	ctx = ensureContext(ctx)

	if actorID == "" {
		return importer.Preview{}, apperrors.ErrUnauthorized
	}
	if err := s.requireManager(ctx, associationID, actorID); err != nil {
		return importer.Preview{}, err
	}

	rows, rowErrs, err := importer.ParseAt(r, s.clock())
	if err != nil {
		return importer.Preview{}, apperrors.NewBadRequest(err.Error())
	}
	return importer.NewPreview(rows, rowErrs), nil
}

// BulkImportInput carries the rows a client sends back when committing a
// previewed import.
type BulkImportInput struct {
	AssociationID string
	ActorID       string
	Rows          []importer.ImportRow
}

// BulkImportResult is returned after a committed import.
type BulkImportResult struct {
	Invitations []models.Invitation `json:"invitations"`
	Message     string              `json:"message"`
}

// ImportBulk re-validates the rows and creates one invitation per row in
// a single transaction. Any remaining validation error blocks the whole
// commit; any storage error creates nothing.
func (s *InvitationService) ImportBulk(ctx context.Context, input BulkImportInput) (*BulkImportResult, error) {
	ctx = ensureContext(ctx)

	if input.ActorID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.requireManager(ctx, input.AssociationID, input.ActorID); err != nil {
		return nil, err
	}

	if len(input.Rows) == 0 {
		return nil, ErrImportEmpty
	}
	if errs := importer.ValidateRows(input.Rows, s.clock()); len(errs) > 0 {
		return nil, ErrImportHasErrors
	}

	expiresAt := s.clock().Add(s.expiry)
	records := make([]store.CreateInvitationRecord, 0, len(input.Rows))
	for _, row := range input.Rows {
		token, err := crypto.GenerateToken(s.tokenSize)
		if err != nil {
			return nil, fmt.Errorf("invitation service: generate token: %w", err)
		}
		records = append(records, store.CreateInvitationRecord{
			AssociationID: input.AssociationID,
			Email:         normaliseEmail(row.Email),
			FullName:      row.FullName,
			Phone:         row.Phone,
			BirthDate:     row.BirthDate,
			MemberData:    row.Fields(),
			Token:         token,
			CreatedBy:     input.ActorID,
			ExpiresAt:     expiresAt,
		})
	}

	invitations, err := s.store.CreateInvitationsBulk(ctx, records)
	if err != nil {
		return nil, apperrors.Wrap(err, fmt.Sprintf("Import misslyckades: %v", err))
	}

	metrics.InvitationsCreated.WithLabelValues("bulk").Add(float64(len(invitations)))
	for i := range invitations {
		s.deliver(ctx, &invitations[i])
	}

	return &BulkImportResult{
		Invitations: invitations,
		Message:     fmt.Sprintf("%d inbjudningar har skickats", len(invitations)),
	}, nil
}

// List returns the association's invitations for a managing actor.
func (s *InvitationService) List(ctx context.Context, associationID, actorID string) ([]models.Invitation, error) {
	ctx = ensureContext(ctx)

	if actorID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.requireManager(ctx, associationID, actorID); err != nil {
		return nil, err
	}

	invitations, err := s.store.ListInvitations(ctx, associationID)
	if err != nil {
		return nil, err
	}

	// Report pending invitations past their deadline as expired even if
	// the sweep has not persisted the transition yet.
	now := s.clock()
	for i := range invitations {
		if invitations[i].Status == models.InvitationPending && !now.Before(invitations[i].ExpiresAt) {
			invitations[i].Status = models.InvitationExpired
		}
	}
	return invitations, nil
}

// LookupByToken resolves a public invitation token. A pending invitation
// whose deadline has passed is marked expired as part of the lookup, so
// the stored status catches up with the clock the first time anyone asks.
func (s *InvitationService) LookupByToken(ctx context.Context, token string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	if token == "" {
		return nil, ErrInvitationNotFound
	}

	invitation, err := s.store.FindInvitationByToken(ctx, token)
	if errors.Is(err, store.ErrInvitationNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: lookup: %w", err)
	}

	switch invitation.Status {
	case models.InvitationAccepted:
		return nil, ErrInvitationAlreadyAccepted
	case models.InvitationExpired:
		return nil, ErrInvitationExpired
	}

	if !s.clock().Before(invitation.ExpiresAt) {
		if err := s.store.UpdateInvitationStatus(ctx, invitation.ID, models.InvitationExpired, nil); err != nil {
			s.log.Warn("failed to mark invitation expired",
				zap.String("invitation_id", invitation.ID),
				zap.Error(err))
		}
		return nil, ErrInvitationExpired
	}

	return invitation, nil
}

func (s *InvitationService) requireManager(ctx context.Context, associationID, actorID string) error {
	role, err := s.store.FindMembershipRole(ctx, associationID, actorID)
	if errors.Is(err, store.ErrMembershipNotFound) {
		return ErrInviteForbidden
	}
	if err != nil {
		return fmt.Errorf("invitation service: membership lookup: %w", err)
	}
	if !role.CanManageMembers() {
		return ErrInviteForbidden
	}
	return nil
}

func (s *InvitationService) inviteLink(token string) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/invitations/%s", s.baseURL, token)
}

// deliver sends the invitation email when a mailer is configured. A
// disabled or failing mailer only logs; the invitation already exists.
func (s *InvitationService) deliver(ctx context.Context, invitation *models.Invitation) {
	if s.mailer == nil {
		return
	}

	link := s.inviteLink(invitation.Token)
	body := "Hej!\n\nDu har blivit inbjuden att gå med i en förening på Föreningshub."
	if link != "" {
		body += "\n\nAcceptera inbjudan här: " + link
	}
	body += "\n\nInbjudan är giltig till " + invitation.ExpiresAt.Format("2006-01-02") + "."

	err := s.mailer.Send(ctx, mail.Message{
		To:      []string{invitation.Email},
		Subject: "Du har blivit inbjuden till en förening",
		Body:    body,
	})
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("invitation email delivery failed",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err))
	}
}
