package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

// Auth errors
var (
	ErrMobileRequired = errors.New("mobile number is required")
	ErrOTPRequired    = errors.New("otp is required")
)

// CredentialInvalidator drops the cached backend credential
type CredentialInvalidator interface {
	Invalidate()
}

// AuthService handles OTP login, logout and reload recovery
type AuthService struct {
	api      OriginationAPI
	otp      *OTPService
	registry *SessionRegistry
	tokens   CredentialInvalidator
	log      *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(api OriginationAPI, otp *OTPService, registry *SessionRegistry, tokens CredentialInvalidator) *AuthService {
	return &AuthService{
		api:      api,
		otp:      otp,
		registry: registry,
		tokens:   tokens,
		log:      logrus.WithField("component", "auth"),
	}
}

// SendOTPInput represents the OTP request body
type SendOTPInput struct {
	MobileNumber  string `json:"mobileNumber"`
	AccountNumber string `json:"accountNumber"`
}

// VerifyOTPInput represents the OTP verification body
type VerifyOTPInput struct {
	OTP string `json:"otp"`
}

type otpSentData struct {
	OTPReference domain.FlexString `json:"otpReference"`
	LoginID      domain.FlexString `json:"loginId"`
}

type loginData struct {
	CustomerID        domain.FlexString `json:"customerId"`
	CIF               domain.FlexString `json:"cif"`
	AccountNumber     domain.FlexString `json:"accountNumber"`
	LoginID           domain.FlexString `json:"loginId"`
	RegimentReference domain.FlexString `json:"regimentReference"`
	ApplicationID     domain.FlexString `json:"applicationId"`
}

type createdApplication struct {
	ApplicationID domain.FlexString `json:"applicationId"`
}

// optional turns an empty value into "leave the field alone"
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// SendOTP asks the backend to text an OTP to the customer
func (s *AuthService) SendOTP(ctx context.Context, sess *WizardSession, input SendOTPInput) (origination.Envelope, error) {
	// 1. Validate and throttle locally
	if input.MobileNumber == "" {
		return origination.Envelope{}, ErrMobileRequired
	}
	if err := s.otp.CanRequest(sess.ID); err != nil {
		return origination.Envelope{}, err
	}

	// 2. Backend sends the OTP
	env, err := s.api.SendOTP(ctx, origination.SendOTPRequest{
		MobileNumber:  input.MobileNumber,
		AccountNumber: input.AccountNumber,
	})
	if err != nil || !env.IsSuccess() {
		return env, err
	}

	// 3. Remember the reference for verification
	var data otpSentData
	if err := env.DecodeData(&data); err != nil {
		s.log.WithError(err).Warn("otp send data unreadable")
	}
	ref := data.OTPReference.String()
	if ref == "" {
		ref = env.ExtraString("otpReference")
	}
	s.otp.Track(sess.ID, ref, input.MobileNumber)

	sess.Update(ctx, domain.SessionPatch{
		MobileNumber:  domain.Str(input.MobileNumber),
		AccountNumber: optional(input.AccountNumber),
		OTPReference:  domain.Str(ref),
		LoginID:       optional(data.LoginID.String()),
	})
	return env, nil
}

// VerifyOTP checks the code with the backend, fills the session with the
// customer identifiers, makes sure an application exists and leaves step 1.
func (s *AuthService) VerifyOTP(ctx context.Context, sess *WizardSession, input VerifyOTPInput) (domain.Step, origination.Envelope, error) {
	if input.OTP == "" {
		return sess.Sequencer.Current(), origination.Envelope{}, ErrOTPRequired
	}
	// A customer already verified on an earlier attempt only lacks the
	// application; the consumed code is not sent again.
	verified := sess.Snapshot().CustomerID != ""
	var pending OTPEntry
	if !verified {
		p, err := s.otp.Pending(sess.ID)
		if err != nil {
			return sess.Sequencer.Current(), origination.Envelope{}, err
		}
		pending = p
	}

	step, env, err := sess.Sequencer.Advance(ctx, domain.StepLogin, func(ctx context.Context) (origination.Envelope, error) {
		snap := sess.Snapshot()
		if snap.CustomerID != "" {
			return s.ensureApplication(ctx, sess, snap)
		}
		ref := snap.OTPReference
		if ref == "" {
			ref = pending.Reference
		}

		// 1. Verify with backend
		env, err := s.api.VerifyOTP(ctx, origination.VerifyOTPRequest{
			MobileNumber: snap.MobileNumber,
			OTPReference: ref,
			OTP:          input.OTP,
		})
		if err != nil {
			return env, err
		}
		if !env.IsSuccess() {
			left := s.otp.RecordFailure(sess.ID)
			s.log.WithField("attempts_left", left).Info("otp rejected")
			return env, nil
		}
		s.otp.Clear(sess.ID)

		// 2. Merge identifiers
		var data loginData
		if err := env.DecodeData(&data); err != nil {
			s.log.WithError(err).Warn("login data unreadable")
		}
		snap = sess.Update(ctx, domain.SessionPatch{
			CustomerID:        optional(data.CustomerID.String()),
			CIF:               optional(data.CIF.String()),
			AccountNumber:     optional(data.AccountNumber.String()),
			LoginID:           optional(data.LoginID.String()),
			RegimentReference: optional(data.RegimentReference.String()),
			ApplicationID:     optional(data.ApplicationID.String()),
			OTPReference:      domain.Str(""),
		})
		if snap.ApplicationID != "" {
			return env, nil
		}
		return s.ensureApplication(ctx, sess, snap)
	})
	if err == nil {
		sess.Persist(ctx)
	}
	return step, env, err
}

// ensureApplication opens an application for a verified first-time customer
func (s *AuthService) ensureApplication(ctx context.Context, sess *WizardSession, snap domain.SessionContext) (origination.Envelope, error) {
	if snap.ApplicationID != "" {
		return origination.Envelope{Status: origination.StatusOK, Message: "success"}, nil
	}
	created, err := s.api.CreateApplication(ctx, origination.CreateApplicationRequest{
		CustomerID:        snap.CustomerID,
		CIF:               snap.CIF,
		AccountNumber:     snap.AccountNumber,
		LoginID:           snap.LoginID,
		RegimentReference: snap.RegimentReference,
	})
	if err != nil || !created.IsSuccess() {
		return created, err
	}
	var app createdApplication
	if err := created.DecodeData(&app); err != nil {
		s.log.WithError(err).Warn("created application data unreadable")
	}
	appID := app.ApplicationID.String()
	if appID == "" {
		appID = created.ExtraString("applicationId")
	}
	if appID == "" {
		return origination.Failure("application created without an id"), nil
	}
	sess.Update(ctx, domain.SessionPatch{ApplicationID: domain.Str(appID)})
	return created, nil
}

// Logout forgets the session everywhere and drops the backend credential
func (s *AuthService) Logout(ctx context.Context, sess *WizardSession) {
	s.otp.Clear(sess.ID)
	s.registry.Remove(ctx, sess.ID)
	s.tokens.Invalidate()
}

// Restore recovers a session after a page reload. Other navigations never restore.
func (s *AuthService) Restore(ctx context.Context, sessionID string, reload bool) (*WizardSession, bool, error) {
	if !reload {
		return nil, false, nil
	}
	return s.registry.Restore(ctx, sessionID)
}
