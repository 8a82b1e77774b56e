package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

func newWizardFixture(t *testing.T, faces FaceDetector) (*WizardService, *fakeAPI, *WizardSession) {
	t.Helper()
	api := newFakeAPI()
	reg := NewSessionRegistry(nil)
	sess := reg.Create()
	sess.Update(context.Background(), domain.SessionPatch{
		ApplicationID: domain.Str("APP-1"),
		CustomerID:    domain.Str("C-1"),
		CIF:           domain.Str("CIF-1"),
		AccountNumber: domain.Str("0099"),
	})
	return NewWizardService(api, faces), api, sess
}

func TestWizardHappyPath(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	ctx := context.Background()
	sess.Sequencer.Restore(domain.StepPersonalInfo)

	step, _, err := svc.SavePersonal(ctx, sess, PersonalInput{Email: "a@b.c", Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StepAddress, step)
	personal := api.lastCall("SavePersonal").(origination.PersonalInfoRequest)
	assert.Equal(t, "APP-1", personal.ApplicationID)
	assert.Equal(t, "CIF-1", personal.CIF)

	step, _, err = svc.SaveAddress(ctx, sess, AddressInput{
		PresentAddress: domain.Address{District: "Dhaka"},
		SameAsPresent:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StepLiabilities, step)
	addr := api.lastCall("SaveAddress").(origination.AddressRequest)
	assert.Equal(t, "Dhaka", addr.PermanentAddress.District.String())

	step, _, err = svc.ConfirmLiabilities(ctx, sess, LiabilityConfirmInput{HasLiability: false})
	require.NoError(t, err)
	assert.Equal(t, domain.StepLoanInfo, step)

	step, _, err = svc.SaveLoan(ctx, sess, LoanInput{LoanAmount: 100000, TenureMonths: 12})
	require.NoError(t, err)
	assert.Equal(t, domain.StepSummary, step)

	step, _, err = svc.ConfirmSummary(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, domain.StepFaceCapture, step)

	step, _, err = svc.CaptureFace(ctx, sess, FaceInput{Image: []byte{0xff, 0xd8, 0xff, 0xe0}})
	require.NoError(t, err)
	assert.Equal(t, domain.StepTerms, step)
	upload := api.lastCall("UploadDocument").(origination.DocumentUploadRequest)
	assert.Equal(t, faceDocumentType, upload.DocumentType)
	assert.Equal(t, "image/jpeg", upload.MimeType)
	assert.NotEmpty(t, upload.Content)

	step, _, err = svc.Submit(ctx, sess, SubmitInput{TermsAccepted: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StepTerms, step)
	assert.True(t, sess.Sequencer.Submitted())
}

func TestWizardSaveFailureKeepsStep(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	api.on("SavePersonal", origination.Envelope{Status: "200", Message: "Success."})
	sess.Sequencer.Restore(domain.StepPersonalInfo)

	step, env, err := svc.SavePersonal(context.Background(), sess, PersonalInput{})
	assert.ErrorIs(t, err, domain.ErrStepNotSaved)
	assert.Equal(t, domain.StepPersonalInfo, step)
	assert.Equal(t, "Success.", env.Message)
}

func TestWizardTokenErrorSurfaces(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	api.err = origination.ErrTokenAcquisition
	sess.Sequencer.Restore(domain.StepAddress)

	_, _, err := svc.SaveAddress(context.Background(), sess, AddressInput{})
	assert.ErrorIs(t, err, origination.ErrTokenAcquisition)
	assert.Equal(t, domain.StepAddress, sess.Sequencer.Current())
}

func TestWizardRejectsInvalidLoan(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	sess.Sequencer.Restore(domain.StepLoanInfo)

	_, _, err := svc.SaveLoan(context.Background(), sess, LoanInput{LoanAmount: 0, TenureMonths: 12})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanInput)
	assert.Zero(t, api.callCount("SaveLoanInfo"))

	_, err = svc.CalculateEMI(context.Background(), sess, EMIInput{LoanAmount: 5000})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanInput)
}

func TestWizardFacePolicyGatesUpload(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: false})
	sess.Sequencer.Restore(domain.StepFaceCapture)

	_, _, err := svc.CaptureFace(context.Background(), sess, FaceInput{Image: []byte("img")})
	assert.ErrorIs(t, err, domain.ErrNoFaceDetected)

	_, _, err = svc.CaptureFace(context.Background(), sess, FaceInput{})
	assert.ErrorIs(t, err, ErrImageRequired)

	svc.faces = fakeFaces{err: errors.New("corrupt")}
	_, _, err = svc.CaptureFace(context.Background(), sess, FaceInput{Image: []byte("img")})
	assert.ErrorIs(t, err, domain.ErrNoFaceDetected)

	assert.Zero(t, api.callCount("UploadDocument"))
	assert.Equal(t, domain.StepFaceCapture, sess.Sequencer.Current())
}

func TestWizardSubmitNeedsTerms(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	sess.Sequencer.Restore(domain.StepTerms)

	_, _, err := svc.Submit(context.Background(), sess, SubmitInput{})
	assert.ErrorIs(t, err, domain.ErrTermsNotAccepted)
	assert.Zero(t, api.callCount("SubmitApplication"))
}

func TestWizardBack(t *testing.T) {
	svc, _, sess := newWizardFixture(t, fakeFaces{ok: true})

	_, exited := svc.Back(context.Background(), sess)
	assert.True(t, exited)

	sess.Sequencer.Restore(domain.StepSummary)
	step, exited := svc.Back(context.Background(), sess)
	assert.False(t, exited)
	assert.Equal(t, domain.StepLoanInfo, step)
}

func TestLoadApplicationReplacesState(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	api.on("FetchApplication", mustEnvelope(`{"status":"200","message":"success","data":{
		"profileStatus":"COMPLETE","loanAcNo":"LN-9",
		"personalInfo":{"status":"608"},
		"liabilityInfo":{"dataList":[{"status":"200","institutionName":"X"},{"status":"608"}]}
	}}`))
	sess.State.SetDashboard(&domain.Dashboard{CustomerName: "Kept"})

	state, env, err := svc.LoadApplication(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, env.IsSuccess())
	assert.Equal(t, "APP-1", state.ApplicationID)
	assert.Equal(t, "COMPLETE", state.ProfileStatus)
	assert.Equal(t, "LN-9", state.LoanAcNo)
	assert.False(t, state.HasPersonalData)
	assert.Len(t, state.Liabilities, 1)
	require.NotNil(t, state.Dashboard)
	assert.Equal(t, "Kept", state.Dashboard.CustomerName.String())
}

func TestLoadApplicationTopLevelSections(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	api.on("FetchApplication", mustEnvelope(`{"status":"200","message":"success","loanInfo":{"loanAmount":1000}}`))

	state, _, err := svc.LoadApplication(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, state.HasLoanData)
	assert.Equal(t, "APP-1", state.LoanInfo.ApplicationID.String())
}

func TestLoadApplicationFailureKeepsPreviousState(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	sess.State.Replace(domain.ApplicationDataState{ApplicationID: "PREV", IsDataLoaded: true})
	api.on("FetchApplication", origination.Failure("down"))

	state, env, err := svc.LoadApplication(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "500", env.Status)
	assert.Equal(t, "PREV", state.ApplicationID)
}

func TestLoadDashboardSetsSection(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	api.on("Dashboard", mustEnvelope(`{"status":"200","message":"success","data":{"customerName":"Rahim","eligibleAmount":"500000"}}`))

	dash, _, err := svc.LoadDashboard(context.Background(), sess)
	require.NoError(t, err)
	require.NotNil(t, dash)
	assert.Equal(t, "Rahim", dash.CustomerName.String())
	assert.Equal(t, "Rahim", sess.State.Get().Dashboard.CustomerName.String())
}

func TestLiabilityOperationsUseSessionIDs(t *testing.T) {
	svc, api, sess := newWizardFixture(t, fakeFaces{ok: true})
	ctx := context.Background()

	_, err := svc.SaveLiability(ctx, sess, LiabilityInput{InstitutionName: "Sonali Bank", OutstandingAmount: 1200})
	require.NoError(t, err)
	saved := api.lastCall("SaveLiability").(origination.LiabilityRequest)
	assert.Equal(t, "APP-1", saved.ApplicationID)
	assert.Equal(t, "Sonali Bank", saved.InstitutionName)

	_, err = svc.DeleteLiability(ctx, sess, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.DeleteLiability(ctx, sess, "L-3")
	require.NoError(t, err)
	assert.Equal(t, "L-3", api.lastCall("DeleteLiability").(origination.LiabilityKey).LiabilityID)

	_, err = svc.ListLiabilities(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, api.callCount("ListLiabilities"))
}
