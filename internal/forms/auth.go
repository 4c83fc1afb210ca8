package forms

import (
	"context"
)

type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"notblank"`
	Password string `form:"password" json:"password" validate:"notblank"`
}

type ValidatedLogin struct {
	Email    string
	Password string
}

func (f LoginForm) Validate(_ context.Context) (ValidatedLogin, error) {
	trim(&f.Email)
	if errs := check(&f); len(errs) > 0 {
		return ValidatedLogin{}, errs
	}
	return ValidatedLogin{Email: f.Email, Password: f.Password}, nil
}

type RegistrationForm struct {
	Name            string `form:"name" json:"name" validate:"notblank,max=64"`
	Email           string `form:"email" json:"email" validate:"notblank,email,max=120"`
	Password        string `form:"password" json:"password" validate:"notblank"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" validate:"notblank,eqfield=Password"`
}

type ValidatedRegistration struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the fields and then asks users whether the email is taken.
// The lookup only runs once the address itself is well formed.
func (f RegistrationForm) Validate(ctx context.Context, users EmailChecker) (ValidatedRegistration, error) {
	trim(&f.Name, &f.Email)
	errs := check(&f)

	if !errs.Has("email") {
		taken, err := users.EmailExists(ctx, f.Email)
		if err != nil {
			return ValidatedRegistration{}, err
		}
		if taken {
			errs.Add("email", MsgDuplicateEmail)
		}
	}

	if err := errs.orNil(); err != nil {
		return ValidatedRegistration{}, err
	}
	return ValidatedRegistration{Name: f.Name, Email: f.Email, Password: f.Password}, nil
}
