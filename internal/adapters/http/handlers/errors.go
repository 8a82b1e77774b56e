package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/response"
)

var emptyEnvelope origination.Envelope

// fail maps service errors to HTTP responses. A step the backend refused
// carries the backend envelope so the customer sees its message.
func fail(c *fiber.Ctx, env origination.Envelope, err error) error {
	lang := middleware.Lang(c)
	switch {
	case errors.Is(err, domain.ErrStepNotSaved):
		return response.Envelope(c, env, nil)
	case errors.Is(err, origination.ErrTokenAcquisition):
		return response.ServiceUnavailable(c, i18n.T(lang, i18n.MsgBackendUnavailable))
	case errors.Is(err, domain.ErrStepPending):
		return response.Conflict(c, i18n.T(lang, i18n.MsgStepPending))
	case errors.Is(err, domain.ErrWrongStep):
		return response.Conflict(c, i18n.T(lang, i18n.MsgWrongStep))
	case errors.Is(err, domain.ErrNoFaceDetected):
		return response.UnprocessableEntity(c, i18n.T(lang, i18n.MsgNoFace))
	case errors.Is(err, domain.ErrTermsNotAccepted):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgTermsRequired))
	case errors.Is(err, domain.ErrInvalidLoanInput):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgAmountRequired))
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgInvalidBody))
	case errors.Is(err, services.ErrImageRequired):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgImageRequired))
	case errors.Is(err, services.ErrMobileRequired):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgMobileRequired))
	case errors.Is(err, services.ErrOTPRequired):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgOTPRequired))
	case errors.Is(err, services.ErrOTPCooldown):
		return response.TooManyRequests(c, i18n.T(lang, i18n.MsgOTPCooldown))
	case errors.Is(err, services.ErrOTPTooManyAttempts):
		return response.TooManyRequests(c, i18n.T(lang, i18n.MsgOTPTooManyAttempts))
	case errors.Is(err, services.ErrOTPNotRequested), errors.Is(err, services.ErrOTPExpired):
		return response.BadRequest(c, i18n.T(lang, i18n.MsgOTPNotRequested))
	}

	logrus.WithFields(logrus.Fields{
		"path":       c.Path(),
		"request_id": c.Locals("requestid"),
	}).WithError(err).Error("unhandled service error")
	return response.InternalServerError(c, i18n.T(lang, i18n.MsgBackendUnavailable))
}

// relay answers with the backend envelope, or maps err
func relay(c *fiber.Ctx, env origination.Envelope, err error) error {
	if err != nil {
		return fail(c, env, err)
	}
	return response.Envelope(c, env, env)
}

// sessionOf is only called behind RequireSession
func sessionOf(c *fiber.Ctx) *services.WizardSession {
	sess, _ := middleware.Session(c)
	return sess
}
