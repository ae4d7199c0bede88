package service

import (
	"errors"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/config"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}

type UpdateProfileReq struct {
	Name           *string              `json:"name"`
	NativeLanguage *string              `json:"nativeLanguage"`
	TargetLanguage *string              `json:"targetLanguage"`
	Level          *model.LanguageLevel `json:"level"`
	Goals          *string              `json:"goals"`
	Gaps           *string              `json:"gaps"`
}

// UpdateProfile patches the learner profile fields that steer generation.
func (s *AuthService) UpdateProfile(userID uint, req UpdateProfileReq) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.NativeLanguage != nil {
		user.NativeLanguage = *req.NativeLanguage
	}
	if req.TargetLanguage != nil {
		user.TargetLanguage = *req.TargetLanguage
	}
	if req.Level != nil {
		user.Level = *req.Level
	}
	if req.Goals != nil {
		user.Goals = *req.Goals
	}
	if req.Gaps != nil {
		user.Gaps = *req.Gaps
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
