package service

import (
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/jntcloudcod2019/challenge-fiap-api/pkg/errors"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

const dateLayout = "2006-01-02"

// invalidPayload wraps a validator failure with per-field messages.
func invalidPayload(err error, message string) *appErrors.Error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	return appErrors.WithDetails(wrapped, appValidator.Messages(err))
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// notFoundOrStorage maps sql.ErrNoRows to NotFound and anything else to a storage error.
func notFoundOrStorage(err error, notFound, storage string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Storage(err, storage)
}
