package gateway

import (
	apperrors "jobmate/jobsearch-bot/internal/errors"
)

var userMessages = map[apperrors.ErrorType]string{
	apperrors.ErrTypeUnreachable:       "The job feed is not responding right now. Please try again later.",
	apperrors.ErrTypeMalformedResponse: "The job feed sent an answer I could not read. Please try again later.",
	apperrors.ErrTypeUnauthorized:      "The job feed refused our access key. Please contact the administrator.",
	apperrors.ErrTypeUnavailable:       "Saved jobs are unavailable right now. Please try again later.",
	apperrors.ErrTypeWriteFailed:       "Could not save this job. Please try again.",
	apperrors.ErrTypeNotFound:          "That job no longer exists.",
}

const genericUserMessage = "Something went wrong. Please try again."

// UserMessage turns err into the text shown to the user.
func UserMessage(err error) string {
	if msg, ok := userMessages[apperrors.TypeOf(err)]; ok {
		return msg
	}
	return genericUserMessage
}
