package repositories

import (
	"errors"

	"ecotracker/errs"

	"gorm.io/gorm"
)

// translate maps gorm errors onto the domain taxonomy. notFound and
// duplicate may be nil when the operation cannot produce them.
func translate(op string, err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicate
	}
	return &errs.StorageError{Op: op, Err: err}
}
