package apperrors

import "errors"

var (
	ErrNoContainerSelected = errors.New("no container selected")             // NO_CONTAINER_SELECTED
	ErrMalformedIssueID    = errors.New("issue id missing numeric suffix")   // MALFORMED_ISSUE_ID
	ErrInvalidTimestamp    = errors.New("timelog has unparsable spentAt")    // INVALID_TIMESTAMP
	ErrAPIError            = errors.New("graphql response carries errors")   // API_ERROR
	ErrSettingNotFound     = errors.New("setting not found")                 // SETTING_NOT_FOUND
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Join(errors.New(msg), err)
}
