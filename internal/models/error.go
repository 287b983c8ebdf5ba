package models

import "errors"

var (
	ErrConflictData            = errors.New("data conflicts with existing data")
	ErrDataNotFound            = errors.New("data not found")
	ErrInvalidCredentials      = errors.New("invalid login or password")
	ErrForbidden               = errors.New("operation is not allowed for this user")
	ErrBadWebhookSecret        = errors.New("invalid webhook secret")
	ErrPaymentAlreadyRequested = errors.New("payment for order already requested")
	ErrPaymentNotPaid          = errors.New("payment is not paid, cannot refund")
	ErrAlreadyRefunded         = errors.New("payment already refunded")
	ErrInternalError           = errors.New("internal error")
)
