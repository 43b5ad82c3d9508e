package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PgErrUniqueViolation is the PostgreSQL unique_violation code
const PgErrUniqueViolation = "23505"

// GormStore is the PostgreSQL-backed Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PgErrUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		Order("id").
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *GormStore) ListUsersByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id").Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

func (s *GormStore) SetUserCompany(ctx context.Context, userID uint, companyID *uint) error {
	result := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("company_id", companyID)
	return affected(result)
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&model.User{}, id))
}

func (s *GormStore) CreateCompany(ctx context.Context, company *model.Company) error {
	return translate(s.db.WithContext(ctx).Create(company).Error)
}

func (s *GormStore) GetCompany(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (s *GormStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	if err := s.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, translate(err)
	}
	return companies, nil
}

func (s *GormStore) UpdateCompany(ctx context.Context, company *model.Company) error {
	return translate(s.db.WithContext(ctx).Save(company).Error)
}

func (s *GormStore) DeleteCompany(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("company_id = ?", id).Update("company_id", nil).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&model.Agent{}).Where("company_id = ?", id).Update("company_id", nil).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("company_id = ?", id).Delete(&model.CompanyVoice{}).Error; err != nil {
			return translate(err)
		}
		return affected(tx.Delete(&model.Company{}, id))
	})
}

func (s *GormStore) FindOtherCompany(ctx context.Context, excludeID uint) (*model.Company, error) {
	var company model.Company
	err := s.db.WithContext(ctx).Where("id <> ?", excludeID).Order("id").First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOtherCompany
	}
	if err != nil {
		return nil, translate(err)
	}
	return &company, nil
}

func (s *GormStore) CreateAgent(ctx context.Context, agent *model.Agent) error {
	return translate(s.db.WithContext(ctx).Create(agent).Error)
}

func (s *GormStore) GetAgent(ctx context.Context, id uint) (*model.Agent, error) {
	var agent model.Agent
	if err := s.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

func (s *GormStore) GetAgentByExternalID(ctx context.Context, externalID string) (*model.Agent, error) {
	var agent model.Agent
	if err := s.db.WithContext(ctx).Where("elevenlabs_agent_id = ?", externalID).First(&agent).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

func (s *GormStore) ListAgents(ctx context.Context) ([]model.Agent, error) {
	var agents []model.Agent
	if err := s.db.WithContext(ctx).Order("id").Find(&agents).Error; err != nil {
		return nil, translate(err)
	}
	return agents, nil
}

func (s *GormStore) ListAgentsByCompany(ctx context.Context, companyID uint) ([]model.Agent, error) {
	var agents []model.Agent
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id").Find(&agents).Error
	if err != nil {
		return nil, translate(err)
	}
	return agents, nil
}

func (s *GormStore) UpdateAgent(ctx context.Context, agent *model.Agent) error {
	return translate(s.db.WithContext(ctx).Save(agent).Error)
}

func (s *GormStore) SetAgentCompany(ctx context.Context, agentID uint, companyID *uint) error {
	result := s.db.WithContext(ctx).Model(&model.Agent{}).Where("id = ?", agentID).Update("company_id", companyID)
	return affected(result)
}

func (s *GormStore) DeleteAgent(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&model.Agent{}, id))
}

func (s *GormStore) CreateVoice(ctx context.Context, voice *model.Voice) error {
	return translate(s.db.WithContext(ctx).Create(voice).Error)
}

func (s *GormStore) GetVoice(ctx context.Context, voiceID string) (*model.Voice, error) {
	var voice model.Voice
	if err := s.db.WithContext(ctx).Where("voice_id = ?", voiceID).First(&voice).Error; err != nil {
		return nil, translate(err)
	}
	return &voice, nil
}

func (s *GormStore) ListVoices(ctx context.Context) ([]model.Voice, error) {
	var voices []model.Voice
	if err := s.db.WithContext(ctx).Order("name, voice_id").Find(&voices).Error; err != nil {
		return nil, translate(err)
	}
	return voices, nil
}

func (s *GormStore) ListVoicesByCompany(ctx context.Context, companyID uint) ([]model.Voice, error) {
	var voices []model.Voice
	err := s.db.WithContext(ctx).
		Joins("JOIN company_voices ON company_voices.voice_id = voices.voice_id").
		Where("company_voices.company_id = ?", companyID).
		Order("voices.name, voices.voice_id").
		Find(&voices).Error
	if err != nil {
		return nil, translate(err)
	}
	return voices, nil
}

func (s *GormStore) ReplaceVoices(ctx context.Context, voices []model.Voice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Voice{}).Error; err != nil {
			return translate(err)
		}
		voices = dedupeVoices(voices)
		if len(voices) > 0 {
			if err := tx.CreateInBatches(voices, 200).Error; err != nil {
				return translate(err)
			}
		}
		err := tx.Where("voice_id NOT IN (?)", tx.Model(&model.Voice{}).Select("voice_id")).
			Delete(&model.CompanyVoice{}).Error
		return translate(err)
	})
}

func (s *GormStore) CreateCompanyVoice(ctx context.Context, cv *model.CompanyVoice) error {
	return translate(s.db.WithContext(ctx).Create(cv).Error)
}

func (s *GormStore) DeleteCompanyVoice(ctx context.Context, companyID uint, voiceID string) error {
	result := s.db.WithContext(ctx).
		Where("company_id = ? AND voice_id = ?", companyID, voiceID).
		Delete(&model.CompanyVoice{})
	return affected(result)
}
