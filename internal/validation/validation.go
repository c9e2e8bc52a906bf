// Package validation checks movement and login form input before anything is
// sent to the API.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rogerio-castellano/finance-dashboard/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// messages maps a form field to the message shown whatever rule failed.
var messages = map[string]string{
	"descricao": "Descreva com pelo menos 3 caracteres.",
	"categoria": "Informe uma categoria.",
	"data":      "Data obrigatoria.",
	"tipo":      "Tipo deve ser receita ou despesa.",
	"email":     "Informe um email valido.",
	"password":  "Senha precisa de 6 caracteres ou mais.",
}

const (
	msgValorPositive = "Valor deve ser maior que zero."
	msgValorNumeric  = "Informe um valor numerico."
)

// MovementInput is the raw movement form. Valor is kept as typed so it can be
// coerced the same way a form field would be.
type MovementInput struct {
	Descricao string `form:"descricao" validate:"min=3"`
	Valor     string `form:"valor"`
	Categoria string `form:"categoria" validate:"min=2"`
	Data      string `form:"data" validate:"required"`
	Tipo      string `form:"tipo" validate:"oneof=receita despesa"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"min=6"`
}

// Movement validates the form and returns the normalised create payload.
// On failure the error is Errors with one entry per invalid field.
func Movement(in MovementInput) (models.NewMovement, error) {
	errs := structErrors(in)

	valor, valorErr := coerceAmount(in.Valor)
	if valorErr != nil {
		errs = insertAfter(errs, "descricao", *valorErr)
	}

	if len(errs) > 0 {
		return models.NewMovement{}, errs
	}

	return models.NewMovement{
		Descricao: in.Descricao,
		Valor:     models.NewAmount(valor),
		Categoria: in.Categoria,
		Data:      in.Data,
		Tipo:      models.Kind(in.Tipo),
	}, nil
}

// Login validates the login form.
func Login(in LoginInput) (LoginInput, error) {
	if errs := structErrors(in); len(errs) > 0 {
		return LoginInput{}, errs
	}
	return in, nil
}

func structErrors(v any) Errors {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "form", Reason: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if out.Has(field) {
			continue
		}
		msg, ok := messages[field]
		if !ok {
			msg = fe.Error()
		}
		out = append(out, FieldError{Field: field, Reason: msg})
	}
	return out
}

// coerceAmount turns form text into a positive amount with two decimals.
// Blank input coerces to zero. Both "12.34" and "12,34" are accepted, and
// "1.234,56" is read with "." as the thousands separator.
func coerceAmount(raw string) (decimal.Decimal, *FieldError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &FieldError{Field: "valor", Reason: msgValorPositive}
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &FieldError{Field: "valor", Reason: msgValorNumeric}
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, &FieldError{Field: "valor", Reason: msgValorPositive}
	}
	return d, nil
}

// insertAfter keeps errors in form order: valor sits right after descricao.
func insertAfter(errs Errors, after string, fe FieldError) Errors {
	for i, e := range errs {
		if e.Field == after {
			out := make(Errors, 0, len(errs)+1)
			out = append(out, errs[:i+1]...)
			out = append(out, fe)
			return append(out, errs[i+1:]...)
		}
	}
	return append(Errors{fe}, errs...)
}
