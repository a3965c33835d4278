package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

type RegisterUserMessage struct {
	Email           string        `json:"email"`
	Phone           string        `json:"phone_number,omitempty"`
	Password        string        `json:"password"`
	ConfirmPassword string        `json:"confirm_password"`
	UserType        string        `json:"user_type,omitempty"`
	Client          ClientContext `json:"-"`
	UseHashid       bool          `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&e.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(e.Password)),
		),
	)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return ErrPasswordMismatch
		}
		return nil
	}
}

// ValidatePhoneNumber accepts an empty phone or one parseable as an
// international number.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation)
	}

	return nil
}

// RegisterUserHandler runs registrations as a command.
type RegisterUserHandler struct {
	auther *Auther
}

func NewRegisterUserHandler(auther *Auther) *RegisterUserHandler {
	return &RegisterUserHandler{auther: auther}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*AuthResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	return h.auther.Register(ctx, event)
}
