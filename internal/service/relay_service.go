package service

import (
	"github.com/sirupsen/logrus"
)

// RelayService handles business logic for relaying admin messages to recipients
type RelayService struct {
	access      *AccessPolicy
	registry    *Registry
	messenger   Messenger
	retractions *RetractionScheduler
	logger      *logrus.Logger
}

// NewRelayService creates a new RelayService
func NewRelayService(access *AccessPolicy, registry *Registry, messenger Messenger, retractions *RetractionScheduler, logger *logrus.Logger) *RelayService {
	return &RelayService{
		access:      access,
		registry:    registry,
		messenger:   messenger,
		retractions: retractions,
		logger:      logger,
	}
}

// IsAdmin reports whether userID is an admin
func (s *RelayService) IsAdmin(userID int64) bool {
	return s.access.IsAdmin(userID)
}
