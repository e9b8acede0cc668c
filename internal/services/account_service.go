package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roteiro/internal/config"
	"roteiro/internal/models/db_models"
	"roteiro/internal/models/request_models"
	"roteiro/internal/models/response_models"
	"roteiro/internal/repositories"
	mem "roteiro/pkg/memcache"
	"roteiro/pkg/utils"
)

type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error
	Login(ctx context.Context, request request_models.LoginRequest) (*LoginResult, error)
	Logout(claims *utils.SessionClaims)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID, claims *utils.SessionClaims) error
}

// LoginResult carries the signed session alongside the account view.
type LoginResult struct {
	Account   response_models.AccountResponse
	Token     string
	ExpiresAt time.Time
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	sessions    mem.SessionStore
	sessionCfg  config.SessionConfig
	log         *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	sessions mem.SessionStore,
	sessionCfg config.SessionConfig,
	log *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		sessions:    sessions,
		sessionCfg:  sessionCfg,
		log:         log.Named("accounts"),
	}
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {
	name := strings.TrimSpace(request.Name)
	email := strings.TrimSpace(request.Email)
	if name == "" || email == "" || request.Password == "" {
		return utils.ErrMissingField
	}

	existingAccount, err := a.accountRepo.FindByUsername(ctx, email)
	if err != nil {
		return errors.Join(utils.ErrDatabaseError, err)
	}
	if existingAccount != nil {
		return utils.ErrDuplicateAccount
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return err
	}

	newAccount := &db_models.Account{
		Username:     email,
		Name:         name,
		PasswordHash: hashedPassword,
	}
	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		if errors.Is(err, utils.ErrDuplicateAccount) {
			return err
		}
		return errors.Join(utils.ErrDatabaseError, err)
	}

	a.log.Info("account created", zap.String("account_id", newAccount.ID.String()))
	return nil
}

// Login checks the credentials and signs a new session. Unknown emails and
// wrong passwords fail the same way.
func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(request.Email)
	if email == "" || request.Password == "" {
		return nil, utils.ErrInvalidCredentials
	}

	account, err := a.accountRepo.FindByUsername(ctx, email)
	if err != nil {
		return nil, errors.Join(utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, claims, err := utils.CreateSessionToken(a.sessionCfg.Secret, account.ID, a.sessionCfg.TTL)
	if err != nil {
		return nil, err
	}

	a.log.Info("login", zap.String("account_id", account.ID.String()))
	return &LoginResult{
		Account:   accountResponse(account),
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *AccountService) Logout(claims *utils.SessionClaims) {
	if claims == nil || claims.ExpiresAt == nil {
		return
	}
	a.sessions.Revoke(claims.ID, claims.ExpiresAt.Time)
}

func (a *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, errors.Join(utils.ErrDatabaseError, err)
	}
	if account == nil {
		// the session outlived its account
		return nil, utils.ErrUnauthenticated
	}
	out := accountResponse(account)
	return &out, nil
}

// DeleteAccount removes the account with all of its trips and ends the
// current session.
func (a *AccountService) DeleteAccount(ctx context.Context, accountID uuid.UUID, claims *utils.SessionClaims) error {
	if err := a.accountRepo.Delete(ctx, accountID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.ErrUnauthenticated
		}
		return errors.Join(utils.ErrDatabaseError, err)
	}
	a.Logout(claims)
	a.log.Info("account deleted", zap.String("account_id", accountID.String()))
	return nil
}

func accountResponse(account *db_models.Account) response_models.AccountResponse {
	return response_models.AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Name:     account.Name,
	}
}
