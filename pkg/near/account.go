package near

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/chainsafe/fastbridge/pkg/app/errors"
)

// AccountID is a NEAR account identifier. The codecs treat it as an opaque,
// already validated string; ParseAccountID is the validation entry point.
type AccountID string

func (a AccountID) String() string {
	return string(a)
}

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64

	// AccountIDTag is the validator tag registered by Validator.
	AccountIDTag = "near_account"
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the near_account tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation(AccountIDTag, func(fl validator.FieldLevel) bool {
			return IsValidAccountID(fl.Field().String())
		})
	})
	return validate
}

// IsValidAccountID reports whether s follows the NEAR account ID rules.
func IsValidAccountID(s string) bool {
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return false
	}
	return accountIDPattern.MatchString(s)
}

// ParseAccountID validates s as a NEAR account ID.
func ParseAccountID(s string) (AccountID, error) {
	if err := Validator().Var(s, "required,"+AccountIDTag); err != nil {
		return "", apperrors.InvalidEncodingError(apperrors.StageAccount, s, err)
	}
	return AccountID(s), nil
}
