// Package contact stores inquiries from the contact form.
package contact

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Input is a contact form submission.
type Input struct {
	Name    string `form:"name" json:"name" validate:"required,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email,max=120"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200"`
	Message string `form:"message" json:"message" validate:"required"`
}

func (in *Input) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
}

type Service struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Submit validates and stores a new, unread inquiry.
func (s *Service) Submit(ctx context.Context, in Input) (models.Contact, error) {
	in.trim()
	if err := s.validate.Struct(in); err != nil {
		return models.Contact{}, toValidation(err)
	}
	c := models.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.Contact{}, apperr.Storage("create contact", err)
	}
	return c, nil
}

// List returns inquiries newest first.
func (s *Service) List(ctx context.Context, unreadOnly bool) ([]models.Contact, error) {
	q := s.db.WithContext(ctx).Order("created_at desc, id desc")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	items := []models.Contact{}
	if err := q.Find(&items).Error; err != nil {
		return nil, apperr.Storage("list contacts", err)
	}
	return items, nil
}

// MarkRead flags a contact as read. Marking an already-read contact is a
// no-op, not NotFound.
func (s *Service) MarkRead(ctx context.Context, id uint) error {
	var m models.Contact
	err := s.db.WithContext(ctx).Select("id", "is_read").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("contact")
	}
	if err != nil {
		return apperr.Storage("mark contact read", err)
	}
	if m.IsRead {
		return nil
	}
	err = s.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).Update("is_read", true).Error
	return apperr.Storage("mark contact read", err)
}

// toValidation reports the first failing field.
func toValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("", err.Error())
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(field, "is required")
	case "email":
		return apperr.Invalid(field, "is not a valid email address")
	case "max":
		return apperr.Invalid(field, "must be at most "+fe.Param()+" characters")
	default:
		return apperr.Invalid(field, "is invalid")
	}
}
