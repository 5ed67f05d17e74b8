package session

import (
	"context"
	"fmt"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
)

type sessionService struct {
	RedisRepository contracts.RedisRepository
}

func NewSessionService(redisRepository contracts.RedisRepository) contracts.SessionService {
	return &sessionService{
		RedisRepository: redisRepository,
	}
}

func (svc *sessionService) GetSessionData(ctx context.Context, sessionID string) (string, error) {
	sessionKey := fmt.Sprintf(constvars.ClinicianSessionKeyFormat, sessionID)
	sessionData, err := svc.RedisRepository.Get(ctx, sessionKey)
	if err != nil {
		return "", exceptions.ErrAuthInvalidSession(err)
	}
	if sessionData == "" {
		return "", exceptions.ErrAuthInvalidSession(fmt.Errorf("no session stored for id %s", sessionID))
	}
	return sessionData, nil
}

func (svc *sessionService) ParseSessionData(ctx context.Context, sessionData string) (*models.ClinicianSession, error) {
	session := new(models.ClinicianSession)
	err := json.Unmarshal([]byte(sessionData), session)
	if err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return session, nil
}
