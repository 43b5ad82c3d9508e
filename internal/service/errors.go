package service

import (
	"errors"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/repository"
)

// storeErr maps repository failures to API errors
func storeErr(err error, notFound, duplicate, failed string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(duplicate)
	default:
		return apperr.Internal(failed, err)
	}
}
