package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/model"
	"github.com/IBosman/zeeder-sub000/internal/repository"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/IBosman/zeeder-sub000/prometheus"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// Directory manages accounts and companies
type Directory struct {
	store    repository.Store
	provider auth.Provider
}

// NewDirectory creates the account and company service
func NewDirectory(store repository.Store, provider auth.Provider) *Directory {
	return &Directory{store: store, provider: provider}
}

// Session is returned by login and registration
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login authenticates by username or email
func (d *Directory) Login(ctx context.Context, login, password string) (*Session, error) {
	prometheus.LoginCounter.Inc()
	log := logger.Ctx(ctx)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.BadRequest("username and password are required")
	}

	user, err := d.store.GetUserByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Login for unknown account", zap.String("login", login))
		prometheus.RecordAuthError("login_failure")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		log.Warn("Invalid password", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("login_failure")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return d.session(user)
}

// RegisterInput is a self-service sign-up
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user-role account without a company
func (d *Directory) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := d.CreateUser(ctx, CreateUserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     model.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	prometheus.RegisterCounter.Inc()
	return d.session(user)
}

func (d *Directory) session(user *model.User) (*Session, error) {
	token, err := d.provider.Issue(auth.IdentityOf(user))
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Me returns the account behind identity
func (d *Directory) Me(ctx context.Context, identity auth.Identity) (*model.User, error) {
	user, err := d.store.GetUser(ctx, identity.UserID)
	return user, storeErr(err, "user not found", "", "failed to load user")
}

// CreateUserInput is an admin-created account
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID *uint  `json:"companyId"`
}

// CreateUser validates and stores a new account with a hashed password
func (d *Directory) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.BadRequest("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.BadRequest("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.BadRequest("password must be at least 6 characters")
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, apperr.BadRequest("invalid role")
	}

	companyID, err := d.normalizeCompany(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CompanyID:    companyID,
	}
	if err := d.store.CreateUser(ctx, user); err != nil {
		return nil, storeErr(err, "", "username or email already exists", "failed to create user")
	}

	logger.Ctx(ctx).Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return user, nil
}

// normalizeCompany treats 0 as unassigned and checks that other IDs exist
func (d *Directory) normalizeCompany(ctx context.Context, companyID *uint) (*uint, error) {
	if companyID == nil || *companyID == 0 {
		return nil, nil
	}
	if _, err := d.store.GetCompany(ctx, *companyID); err != nil {
		return nil, storeErr(err, "company not found", "", "failed to load company")
	}
	id := *companyID
	return &id, nil
}

// ListUsers returns every account
func (d *Directory) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

// UpdateUserInput is an admin edit. A companyId of 0 unassigns the user.
type UpdateUserInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	CompanyID *uint   `json:"companyId"`
}

// UpdateUser applies the fields present in in
func (d *Directory) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error) {
	user, err := d.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found", "", "failed to load user")
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, apperr.BadRequest("username cannot be empty")
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.BadRequest("invalid email address")
		}
		user.Email = email
	}
	if in.Role != nil {
		if !model.ValidRole(*in.Role) {
			return nil, apperr.BadRequest("invalid role")
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperr.BadRequest("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		user.PasswordHash = hash
	}
	if in.CompanyID != nil {
		companyID, err := d.normalizeCompany(ctx, in.CompanyID)
		if err != nil {
			return nil, err
		}
		// moving between companies goes through an explicit unassign first
		if companyID != nil && user.CompanyID != nil && *user.CompanyID != 0 && *user.CompanyID != *companyID {
			return nil, apperr.Conflict("user already belongs to another company")
		}
		user.CompanyID = companyID
	}

	if err := d.store.UpdateUser(ctx, user); err != nil {
		return nil, storeErr(err, "user not found", "username or email already exists", "failed to update user")
	}
	return user, nil
}

// DeleteUser removes an account other than the caller's own
func (d *Directory) DeleteUser(ctx context.Context, identity auth.Identity, id uint) error {
	if identity.UserID == id {
		return apperr.BadRequest("cannot delete your own account")
	}
	return storeErr(d.store.DeleteUser(ctx, id), "user not found", "", "failed to delete user")
}

// AdminInput holds the bootstrap admin credentials
type AdminInput struct {
	Username string
	Email    string
	Password string
}

// EnsureDefaultAdmin creates the bootstrap admin unless an account with that
// username already exists. It reports whether an account was created.
func (d *Directory) EnsureDefaultAdmin(ctx context.Context, in AdminInput) (bool, error) {
	_, err := d.store.GetUserByLogin(ctx, in.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, apperr.Internal("failed to look up admin", err)
	}

	if _, err := d.CreateUser(ctx, CreateUserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     model.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// CompanyInput creates or edits a company
type CompanyInput struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// ListCompanies returns every company
func (d *Directory) ListCompanies(ctx context.Context) ([]model.Company, error) {
	companies, err := d.store.ListCompanies(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list companies", err)
	}
	return companies, nil
}

// GetCompany returns one company
func (d *Directory) GetCompany(ctx context.Context, id uint) (*model.Company, error) {
	company, err := d.store.GetCompany(ctx, id)
	return company, storeErr(err, "company not found", "", "failed to load company")
}

// CreateCompany stores a new, by default active, company
func (d *Directory) CreateCompany(ctx context.Context, in CompanyInput) (*model.Company, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	company := &model.Company{Name: strings.TrimSpace(*in.Name), Active: true}
	if in.Active != nil {
		company.Active = *in.Active
	}
	if err := d.store.CreateCompany(ctx, company); err != nil {
		return nil, storeErr(err, "", "company name already exists", "failed to create company")
	}

	logger.Ctx(ctx).Info("Company created",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))
	return company, nil
}

// UpdateCompany renames or (de)activates a company
func (d *Directory) UpdateCompany(ctx context.Context, id uint, in CompanyInput) (*model.Company, error) {
	company, err := d.store.GetCompany(ctx, id)
	if err != nil {
		return nil, storeErr(err, "company not found", "", "failed to load company")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.BadRequest("name cannot be empty")
		}
		company.Name = name
	}
	if in.Active != nil {
		company.Active = *in.Active
	}
	if err := d.store.UpdateCompany(ctx, company); err != nil {
		return nil, storeErr(err, "company not found", "company name already exists", "failed to update company")
	}
	return company, nil
}

// DeleteCompany removes a company, leaving its users and agents unassigned
func (d *Directory) DeleteCompany(ctx context.Context, id uint) error {
	if err := d.store.DeleteCompany(ctx, id); err != nil {
		return storeErr(err, "company not found", "", "failed to delete company")
	}
	logger.Ctx(ctx).Info("Company deleted", zap.Uint("company_id", id))
	return nil
}
