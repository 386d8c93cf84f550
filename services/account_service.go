package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinBalance = 20000
	MaxBalance = 50000
)

// SignupRequest is the registration form, account and card details together.
type SignupRequest struct {
	Username        string `json:"username" form:"username" validate:"required,max=80"`
	Email           string `json:"email" form:"email" validate:"required,email,max=50"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
	CardNumber      string `json:"cardNumber" form:"cardnumber" validate:"required,len=16,number"`
	CVV             string `json:"cvv" form:"cvv" validate:"required,min=3,max=4,number"`
	Expiry          string `json:"expiry" form:"edate" validate:"required"`
}

// Profile is what the account page shows. The card is masked.
type Profile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Balance        int    `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
	Card           string `json:"card,omitempty"`
}

type AccountService struct {
	db       *gorm.DB
	validate *validator.Validate
	metrics  *metrics.Metrics
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it.
	BcryptCost int
	balance    func() int
}

func NewAccountService(db *gorm.DB, m *metrics.Metrics) *AccountService {
	return &AccountService{
		db:         db,
		validate:   validator.New(),
		metrics:    m,
		BcryptCost: bcrypt.DefaultCost,
		balance:    func() int { return MinBalance + rand.Intn(MaxBalance-MinBalance+1) },
	}
}

// Signup validates the form, runs the four uniqueness probes in order
// (username, email, card, cvv), hashes the password once and seeds a random
// balance.
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.CardNumber = strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	req.CVV = strings.TrimSpace(req.CVV)

	user, err := s.signup(ctx, req)
	switch KindOf(err) {
	case 0:
		if err == nil {
			s.metrics.Signup("created")
		} else {
			s.metrics.Signup("error")
		}
	case KindConflict:
		s.metrics.Signup("conflict")
	default:
		s.metrics.Signup("invalid")
	}
	return user, err
}

func (s *AccountService) signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, signupValidationError(err)
	}
	if req.Password != req.ConfirmPassword {
		return nil, invalidInput("confirmPassword", "Passwords don't match.")
	}
	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		return nil, invalidInput("expiry", "Invalid card expiry date.")
	}
	cvv, _ := strconv.Atoi(req.CVV)

	db := s.db.WithContext(ctx)
	probes := []struct {
		column string
		value  interface{}
		msg    string
	}{
		{"username", req.Username, "User already exists"},
		{"email", req.Email, "User with same email exists"},
		{"card_number", req.CardNumber, "User with same card exists"},
		{"cvv", cvv, "User with same cvv exists"},
	}
	for _, p := range probes {
		var count int64
		if err := db.Model(&models.User{}).Where(p.column+" = ?", p.value).Count(&count).Error; err != nil {
			return nil, wrap("probe "+p.column, err)
		}
		if count > 0 {
			return nil, conflict(p.msg)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, wrap("hash password", err)
	}

	card := req.CardNumber
	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   string(hashed),
		CardNumber: &card,
		CVV:        &cvv,
		Expiry:     &expiry,
		Balance:    s.balance(),
		Role:       models.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent signup
			return nil, conflict("User already exists")
		}
		return nil, wrap("create user", err)
	}

	utils.InfoLogger.Infof("New user registered: %s (id=%d)", user.Username, user.ID)
	return &user, nil
}

// Authenticate -> NotFound bila username tidak ada, Unauthorized bila password salah
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User with that username doesn't exist")
	}
	if err != nil {
		return nil, wrap("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, unauthorized("Incorrect password")
	}
	return &user, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(fmt.Sprintf("No user found with ID %d", userID))
	}
	if err != nil {
		return nil, wrap("load user", err)
	}

	p := &Profile{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		Balance:        user.Balance,
		BalanceDisplay: utils.FormatBalance(user.Balance),
	}
	if user.CardNumber != nil {
		p.Card = utils.MaskCard(*user.CardNumber)
	}
	return p, nil
}

// EnsureStaff creates a staff account from the seed file when the username
// is not taken yet. It reports whether an account was created.
func (s *AccountService) EnsureStaff(ctx context.Context, staff config.SeedStaff) (bool, error) {
	if staff.Username == "" || staff.Email == "" || staff.Password == "" {
		return false, invalidInput("staff", "Staff seed entries need a username, an email and a password.")
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err := db.Where("username = ? OR email = ?", staff.Username, staff.Email).First(&existing).Error
	switch {
	case err == nil && existing.Username == staff.Username:
		return false, nil
	case err == nil:
		return false, conflict(fmt.Sprintf("Email %s already belongs to %s.", staff.Email, existing.Username))
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, wrap("probe staff", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(staff.Password), s.BcryptCost)
	if err != nil {
		return false, wrap("hash password", err)
	}
	user := models.User{
		Username: staff.Username,
		Email:    staff.Email,
		Password: string(hashed),
		Role:     models.RoleStaff,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, wrap("create staff", err)
	}
	return true, nil
}

var expiryLayouts = []string{"2006-01-02", "2006-01", "01/06", "01/2006"}

func parseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised expiry %q", s)
}

func signupValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidInput("", "Please fill out all fields.")
	}

	fe := verrs[0]
	if fe.Tag() == "required" {
		return invalidInput(fe.Field(), "Please fill out all fields.")
	}
	switch fe.Field() {
	case "Email":
		return invalidInput("email", "Invalid email address.")
	case "CardNumber":
		return invalidInput("cardNumber", "Card number must be 16 digits.")
	case "CVV":
		return invalidInput("cvv", "CVV must be 3 or 4 digits.")
	case "Username":
		return invalidInput("username", "Username is too long.")
	}
	return invalidInput(fe.Field(), fmt.Sprintf("Invalid %s.", fe.Field()))
}
