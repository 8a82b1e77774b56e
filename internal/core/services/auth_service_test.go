package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeAPI, *SessionRegistry, *fakeInvalidator) {
	t.Helper()
	api := newFakeAPI()
	mirror, _ := newTestMirror(t)
	reg := NewSessionRegistry(mirror)
	inv := &fakeInvalidator{}
	return NewAuthService(api, NewOTPService(), reg, inv), api, reg, inv
}

func TestSendOTPStoresReference(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("SendOTP", mustEnvelope(`{"status":"200","message":"Success","data":{"otpReference":"REF-1","loginId":99}}`))
	sess := reg.Create()

	env, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "01711111111", AccountNumber: "0012"})
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())

	snap := sess.Snapshot()
	assert.Equal(t, "REF-1", snap.OTPReference)
	assert.Equal(t, "01711111111", snap.MobileNumber)
	assert.Equal(t, "0012", snap.AccountNumber)
	assert.Equal(t, "99", snap.LoginID)

	_, err = svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "01711111111"})
	assert.ErrorIs(t, err, ErrOTPCooldown)
	assert.Equal(t, 1, api.callCount("SendOTP"))
}

func TestSendOTPRequiresMobile(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	_, err := svc.SendOTP(context.Background(), reg.Create(), SendOTPInput{})
	assert.ErrorIs(t, err, ErrMobileRequired)
	assert.Zero(t, api.callCount("SendOTP"))
}

func TestSendOTPBackendFailureIsNotTracked(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("SendOTP", origination.Envelope{Status: "400", Message: "Mobile not registered"})
	sess := reg.Create()

	env, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "017"})
	require.NoError(t, err)
	assert.Equal(t, "Mobile not registered", env.Message)

	_, _, err = svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "123456"})
	assert.ErrorIs(t, err, ErrOTPNotRequested)
}

func TestVerifyOTPCreatesApplicationAndAdvances(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("SendOTP", mustEnvelope(`{"status":"200","message":"success","otpReference":"REF-2"}`))
	api.on("VerifyOTP", mustEnvelope(`{"status":"200","message":"success","data":{"customerId":"C-1","cif":"CIF-1","regimentReference":"BA-123"}}`))
	api.on("CreateApplication", mustEnvelope(`{"status":"200","message":"success","data":{"applicationId":5001}}`))
	sess := reg.Create()

	_, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "017"})
	require.NoError(t, err)

	step, env, err := svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "123456"})
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())
	assert.Equal(t, domain.StepPersonalInfo, step)

	snap := sess.Snapshot()
	assert.Equal(t, "C-1", snap.CustomerID)
	assert.Equal(t, "CIF-1", snap.CIF)
	assert.Equal(t, "BA-123", snap.RegimentReference)
	assert.Equal(t, "5001", snap.ApplicationID)
	assert.Empty(t, snap.OTPReference)

	req := api.lastCall("VerifyOTP").(origination.VerifyOTPRequest)
	assert.Equal(t, "REF-2", req.OTPReference)
	assert.Equal(t, "123456", req.OTP)
}

func TestVerifyOTPRetriesApplicationCreation(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("VerifyOTP", mustEnvelope(`{"status":"200","message":"success","data":{"customerId":"C-1"}}`))
	api.on("CreateApplication",
		origination.Envelope{Status: "500", Message: "Internal Server Error"},
		mustEnvelope(`{"status":"200","message":"success","data":{"applicationId":"APP-2"}}`),
	)
	sess := reg.Create()
	_, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "017"})
	require.NoError(t, err)

	step, env, err := svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrStepNotSaved)
	assert.Equal(t, domain.StepLogin, step)
	assert.Equal(t, "500", env.Status)
	assert.Equal(t, "C-1", sess.Snapshot().CustomerID)
	assert.Empty(t, sess.Snapshot().ApplicationID)

	step, env, err = svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "123456"})
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())
	assert.Equal(t, domain.StepPersonalInfo, step)
	assert.Equal(t, "APP-2", sess.Snapshot().ApplicationID)
	assert.Equal(t, 1, api.callCount("VerifyOTP"))
	assert.Equal(t, 2, api.callCount("CreateApplication"))
}

func TestVerifyOTPReusesExistingApplication(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("VerifyOTP", mustEnvelope(`{"status":"200","message":"success","data":{"customerId":"C-1","applicationId":"APP-OLD"}}`))
	sess := reg.Create()
	_, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "017"})
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "1"})
	require.NoError(t, err)
	assert.Equal(t, "APP-OLD", sess.Snapshot().ApplicationID)
	assert.Zero(t, api.callCount("CreateApplication"))
}

func TestVerifyOTPWrongCodeStaysOnLogin(t *testing.T) {
	svc, api, reg, _ := newAuthFixture(t)
	api.on("VerifyOTP", origination.Envelope{Status: "400", Message: "Invalid OTP"})
	sess := reg.Create()
	_, err := svc.SendOTP(context.Background(), sess, SendOTPInput{MobileNumber: "017"})
	require.NoError(t, err)

	for i := 0; i < otpMaxAttempts; i++ {
		step, env, err := svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "000000"})
		assert.ErrorIs(t, err, domain.ErrStepNotSaved)
		assert.Equal(t, domain.StepLogin, step)
		assert.Equal(t, "Invalid OTP", env.Message)
	}

	_, _, err = svc.VerifyOTP(context.Background(), sess, VerifyOTPInput{OTP: "000000"})
	assert.ErrorIs(t, err, ErrOTPNotRequested)
	assert.Equal(t, otpMaxAttempts, api.callCount("VerifyOTP"))
}

func TestLogoutRemovesSessionAndInvalidates(t *testing.T) {
	svc, _, reg, inv := newAuthFixture(t)
	sess := reg.Create()
	sess.Update(context.Background(), domain.SessionPatch{CIF: domain.Str("C")})

	svc.Logout(context.Background(), sess)

	_, ok := reg.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, inv.n)

	_, restored, err := svc.Restore(context.Background(), sess.ID, true)
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestRestoreOnlyOnReload(t *testing.T) {
	svc, _, reg, _ := newAuthFixture(t)
	sess := reg.Create()
	sess.Update(context.Background(), domain.SessionPatch{ApplicationID: domain.Str("A-1")})
	reg.EvictIdle(-1)

	_, restored, err := svc.Restore(context.Background(), sess.ID, false)
	require.NoError(t, err)
	assert.False(t, restored)

	got, restored, err := svc.Restore(context.Background(), sess.ID, true)
	require.NoError(t, err)
	require.True(t, restored)
	assert.Equal(t, "A-1", got.Snapshot().ApplicationID)
}
