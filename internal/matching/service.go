// Package matching implements the write side of the service: registering
// recipients and consuming them with donations.
package matching

import (
	"context"
	"strings"
	"time"

	"aidhub/internal/mail"
	"aidhub/internal/metrics"
	"aidhub/internal/store"
	"aidhub/internal/urgency"
	"aidhub/internal/utils"
	"aidhub/internal/validation"
	"aidhub/pkg/types"

	"github.com/sirupsen/logrus"
)

// DefaultMailTimeout bounds match notifications sent after commit.
const DefaultMailTimeout = 15 * time.Second

type Resolver interface {
	Resolve(ctx context.Context, location string) (types.Coordinates, bool)
}

type Estimator interface {
	Estimate(ctx context.Context, location, donationType string) urgency.Estimate
}

type RecipientWriter interface {
	CreateRecipient(ctx context.Context, recipient *types.Recipient) error
}

type MatchRecorder interface {
	RecordMatch(ctx context.Context, recipientID string, build store.MatchBuilder) (*types.Match, error)
}

type Notifier interface {
	NotifyMatch(ctx context.Context, notice mail.MatchNotice)
}

type Service struct {
	resolver    Resolver
	estimator   Estimator
	recipients  RecipientWriter
	matches     MatchRecorder
	notifier    Notifier
	mailTimeout time.Duration
	now         func() time.Time
	logger      logrus.FieldLogger
}

func NewService(
	resolver Resolver,
	estimator Estimator,
	recipients RecipientWriter,
	matches MatchRecorder,
	notifier Notifier,
	logger logrus.FieldLogger,
) *Service {
	return &Service{
		resolver:    resolver,
		estimator:   estimator,
		recipients:  recipients,
		matches:     matches,
		notifier:    notifier,
		mailTimeout: DefaultMailTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

// Registration is a newly created recipient and the estimate its urgency came from.
type Registration struct {
	Recipient *types.Recipient
	Estimate  urgency.Estimate
}

// AddRecipient geocodes the request location, estimates urgency for the type
// and stores the new recipient.
func (s *Service) AddRecipient(ctx context.Context, req *types.CreateRecipientRequest) (*Registration, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	donationType := strings.ToLower(req.DonationType)

	coords, ok := s.resolver.Resolve(ctx, req.Location)
	if !ok {
		return nil, types.ErrInvalidLocation
	}

	estimate := s.estimator.Estimate(ctx, req.Location, donationType)

	recipient := &types.Recipient{
		Name:         req.Name,
		Location:     req.Location,
		Latitude:     coords.Latitude,
		Longitude:    coords.Longitude,
		DonationType: donationType,
		Urgency:      estimate.Urgency,
		Contact:      req.Contact,
		Phone:        req.Phone,
		Message:      utils.StringPtr(req.Message),
	}

	if err := s.recipients.CreateRecipient(ctx, recipient); err != nil {
		return nil, types.NewError(types.KindData, "matching.AddRecipient", "failed to save recipient", err)
	}

	metrics.RecipientsCreatedTotal.WithLabelValues(donationType).Inc()
	s.logger.WithFields(logrus.Fields{
		"recipient_id":  recipient.ID,
		"donation_type": donationType,
		"urgency":       estimate.Urgency,
		"confidence":    estimate.Confidence,
	}).Info("recipient added")

	return &Registration{Recipient: recipient, Estimate: estimate}, nil
}

// Donate consumes the requested recipient. The recipient delete, the donation
// and the history snapshot commit together; notification mail goes out after
// commit and never fails the donation.
func (s *Service) Donate(ctx context.Context, req *types.DonateRequest) (*types.Match, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = types.AnonymousDonor
	}
	donationType := strings.ToLower(req.DonationType)

	match, err := s.matches.RecordMatch(ctx, req.RecipientID, func(recipient *types.Recipient) (*types.Donation, *types.DonatedRecipient, error) {
		donated := &types.DonatedRecipient{
			Name:             recipient.Name,
			Location:         recipient.Location,
			Latitude:         recipient.Latitude,
			Longitude:        recipient.Longitude,
			DonationType:     recipient.DonationType,
			Urgency:          recipient.Urgency,
			DonorName:        donorName,
			RecipientContact: recipient.Contact,
			RecipientPhone:   recipient.Phone,
			DonorContact:     req.DonorContact,
			DonorPhone:       req.DonorPhone,
			PickupLocation:   req.PickupLocation,
			TransactionDate:  s.now(),
		}

		donation := &types.Donation{
			DonorName:      donorName,
			DonorContact:   req.DonorContact,
			DonorPhone:     req.DonorPhone,
			DonationType:   donationType,
			PickupLocation: req.PickupLocation,
		}

		return donation, donated, nil
	})
	if err != nil {
		entry := s.logger.WithError(err).WithField("recipient_id", req.RecipientID)
		if types.KindOf(err) == types.KindNotFound {
			metrics.MatchesTotal.WithLabelValues("not_found").Inc()
			entry.Info("donation for unknown recipient")
			return nil, types.NotFoundError("Recipient not found with ID: " + req.RecipientID)
		}

		metrics.MatchesTotal.WithLabelValues("failed").Inc()
		entry.Error("database transaction error")
		return nil, types.NewError(types.KindData, "matching.Donate", "Database error occurred while processing donation", err)
	}

	metrics.MatchesTotal.WithLabelValues("committed").Inc()
	s.logger.WithFields(logrus.Fields{
		"donation_id":  match.Donation.ID,
		"recipient_id": match.Recipient.ID,
	}).Info("donation successful")

	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mailTimeout)
	defer cancel()

	s.notifier.NotifyMatch(mailCtx, mail.MatchNotice{
		DonorName:        donorName,
		DonorEmail:       req.DonorContact,
		DonorPhone:       req.DonorPhone,
		RecipientName:    match.Recipient.Name,
		RecipientEmail:   match.Recipient.Contact,
		RecipientPhone:   match.Recipient.Phone,
		DonationType:     req.DonationType,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: match.Recipient.Location,
		Message:          req.Message,
	})

	return match, nil
}
