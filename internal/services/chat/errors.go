package chat

import (
	"net/http"

	"huddle_backend/pkg/apperrors"
)

func notAMemberError() *apperrors.AppError {
	return apperrors.New(apperrors.CodeForbidden, "chat", "You are not a member of this channel", http.StatusForbidden)
}

func notOwnerError() *apperrors.AppError {
	return apperrors.New(apperrors.CodeForbidden, "chat", "Only the sender can modify this message", http.StatusForbidden)
}

func notPinOwnerError() *apperrors.AppError {
	return apperrors.New(apperrors.CodeForbidden, "chat", "Only the pinner or the channel creator can unpin", http.StatusForbidden)
}

func channelUnresolvedError(err error) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeChannelUnresolved, "chat", "Message channel could not be resolved", http.StatusNotFound)
}

func messageNotFoundError(err error) *apperrors.AppError {
	return apperrors.ErrNotFound(err, "chat", "Message not found")
}

func channelNotFoundError(err error) *apperrors.AppError {
	return apperrors.ErrNotFound(err, "chat", "Channel not found")
}
