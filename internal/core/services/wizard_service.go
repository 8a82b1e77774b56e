package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

var ErrImageRequired = errors.New("photo is required")

const faceDocumentType = "CUSTOMER_PHOTO"

// WizardService saves each wizard step and serves the data screens around it.
type WizardService struct {
	api   OriginationAPI
	faces FaceDetector
	log   *logrus.Entry
}

// NewWizardService creates a wizard service; faces may be replaced with any detector
func NewWizardService(api OriginationAPI, faces FaceDetector) *WizardService {
	return &WizardService{
		api:   api,
		faces: faces,
		log:   logrus.WithField("component", "wizard"),
	}
}

// Step inputs

type PersonalInput struct {
	Email         string `json:"email"`
	MaritalStatus string `json:"maritalStatus"`
	SpouseName    string `json:"spouseName"`
	Confirmed     bool   `json:"confirmed"`
}

type AddressInput struct {
	PresentAddress   domain.Address `json:"presentAddress"`
	PermanentAddress domain.Address `json:"permanentAddress"`
	SameAsPresent    bool           `json:"sameAsPresent"`
}

type LiabilityConfirmInput struct {
	HasLiability bool `json:"hasLiability"`
}

type LoanInput struct {
	ProductCode  string  `json:"productCode"`
	LoanAmount   float64 `json:"loanAmount"`
	TenureMonths int     `json:"tenureMonths"`
	EMIAmount    float64 `json:"emiAmount"`
	Purpose      string  `json:"purpose"`
}

type FaceInput struct {
	Image    []byte
	FileName string
}

type SubmitInput struct {
	TermsAccepted bool `json:"termsAccepted"`
}

type LiabilityInput struct {
	LiabilityID       string  `json:"liabilityId"`
	InstitutionName   string  `json:"institutionName"`
	LoanType          string  `json:"loanType"`
	OutstandingAmount float64 `json:"outstandingAmount"`
	EMIAmount         float64 `json:"emiAmount"`
}

type EMIInput struct {
	ProductCode  string  `json:"productCode"`
	LoanAmount   float64 `json:"loanAmount"`
	TenureMonths int     `json:"tenureMonths"`
}

func applicationKey(snap domain.SessionContext) origination.ApplicationKey {
	return origination.ApplicationKey{
		ApplicationID: snap.ApplicationID,
		CustomerID:    snap.CustomerID,
		CIF:           snap.CIF,
	}
}

func (s *WizardService) advance(ctx context.Context, sess *WizardSession, from domain.Step, save SaveFunc) (domain.Step, origination.Envelope, error) {
	step, env, err := sess.Sequencer.Advance(ctx, from, save)
	if err == nil {
		sess.Persist(ctx)
	}
	return step, env, err
}

// SavePersonal confirms step 2
func (s *WizardService) SavePersonal(ctx context.Context, sess *WizardSession, in PersonalInput) (domain.Step, origination.Envelope, error) {
	return s.advance(ctx, sess, domain.StepPersonalInfo, func(ctx context.Context) (origination.Envelope, error) {
		return s.api.SavePersonal(ctx, origination.PersonalInfoRequest{
			ApplicationKey: applicationKey(sess.Snapshot()),
			Email:          in.Email,
			MaritalStatus:  in.MaritalStatus,
			SpouseName:     in.SpouseName,
			Confirmed:      in.Confirmed,
		})
	})
}

// SaveAddress saves step 3
func (s *WizardService) SaveAddress(ctx context.Context, sess *WizardSession, in AddressInput) (domain.Step, origination.Envelope, error) {
	permanent := in.PermanentAddress
	if in.SameAsPresent {
		permanent = in.PresentAddress
	}
	return s.advance(ctx, sess, domain.StepAddress, func(ctx context.Context) (origination.Envelope, error) {
		return s.api.SaveAddress(ctx, origination.AddressRequest{
			ApplicationKey:   applicationKey(sess.Snapshot()),
			PresentAddress:   in.PresentAddress,
			PermanentAddress: permanent,
			SameAsPresent:    in.SameAsPresent,
		})
	})
}

// ConfirmLiabilities closes step 4
func (s *WizardService) ConfirmLiabilities(ctx context.Context, sess *WizardSession, in LiabilityConfirmInput) (domain.Step, origination.Envelope, error) {
	return s.advance(ctx, sess, domain.StepLiabilities, func(ctx context.Context) (origination.Envelope, error) {
		return s.api.ConfirmLiabilities(ctx, origination.ConfirmLiabilitiesRequest{
			ApplicationKey: applicationKey(sess.Snapshot()),
			HasLiability:   in.HasLiability,
		})
	})
}

// SaveLoan saves step 5
func (s *WizardService) SaveLoan(ctx context.Context, sess *WizardSession, in LoanInput) (domain.Step, origination.Envelope, error) {
	if in.LoanAmount <= 0 || in.TenureMonths <= 0 {
		return sess.Sequencer.Current(), origination.Envelope{}, domain.ErrInvalidLoanInput
	}
	return s.advance(ctx, sess, domain.StepLoanInfo, func(ctx context.Context) (origination.Envelope, error) {
		return s.api.SaveLoanInfo(ctx, origination.LoanInfoRequest{
			ApplicationKey: applicationKey(sess.Snapshot()),
			ProductCode:    in.ProductCode,
			LoanAmount:     in.LoanAmount,
			TenureMonths:   in.TenureMonths,
			EMIAmount:      in.EMIAmount,
			Purpose:        in.Purpose,
		})
	})
}

// ConfirmSummary leaves the read-only review step; nothing is saved
func (s *WizardService) ConfirmSummary(ctx context.Context, sess *WizardSession) (domain.Step, origination.Envelope, error) {
	return s.advance(ctx, sess, domain.StepSummary, nil)
}

// CaptureFace checks the photo locally and uploads it (step 7)
func (s *WizardService) CaptureFace(ctx context.Context, sess *WizardSession, in FaceInput) (domain.Step, origination.Envelope, error) {
	if len(in.Image) == 0 {
		return sess.Sequencer.Current(), origination.Envelope{}, ErrImageRequired
	}
	if cur := sess.Sequencer.Current(); cur != domain.StepFaceCapture {
		return cur, origination.Envelope{}, domain.ErrWrongStep
	}

	ok, err := s.faces.DetectFace(in.Image)
	if err != nil {
		s.log.WithError(err).Info("face photo rejected")
	}
	if err != nil || !ok {
		return sess.Sequencer.Current(), origination.Envelope{}, domain.ErrNoFaceDetected
	}

	name := in.FileName
	if name == "" {
		name = "face.jpg"
	}
	return s.advance(ctx, sess, domain.StepFaceCapture, func(ctx context.Context) (origination.Envelope, error) {
		return s.api.UploadDocument(ctx, origination.DocumentUploadRequest{
			ApplicationKey: applicationKey(sess.Snapshot()),
			DocumentType:   faceDocumentType,
			FileName:       name,
			MimeType:       http.DetectContentType(in.Image),
			Content:        base64.StdEncoding.EncodeToString(in.Image),
		})
	})
}

// Submit sends the application and completes the wizard
func (s *WizardService) Submit(ctx context.Context, sess *WizardSession, in SubmitInput) (domain.Step, origination.Envelope, error) {
	if !in.TermsAccepted {
		return sess.Sequencer.Current(), origination.Envelope{}, domain.ErrTermsNotAccepted
	}
	step, env, err := sess.Sequencer.Finish(ctx, func(ctx context.Context) (origination.Envelope, error) {
		snap := sess.Snapshot()
		return s.api.SubmitApplication(ctx, origination.SubmitRequest{
			ApplicationKey: applicationKey(snap),
			AccountNumber:  snap.AccountNumber,
			TermsAccepted:  true,
		})
	})
	if err == nil {
		sess.Persist(ctx)
		s.log.WithField("application_id", sess.Snapshot().ApplicationID).Info("application submitted")
	}
	return step, env, err
}

// Back moves the wizard one step back; exited means leave to the dashboard
func (s *WizardService) Back(ctx context.Context, sess *WizardSession) (domain.Step, bool) {
	step, exited := sess.Sequencer.Back()
	if !exited {
		sess.Persist(ctx)
	}
	return step, exited
}

// LoadApplication fetches the composite record and replaces the session's read model
func (s *WizardService) LoadApplication(ctx context.Context, sess *WizardSession) (domain.ApplicationDataState, origination.Envelope, error) {
	snap := sess.Snapshot()
	env, err := s.api.FetchApplication(ctx, applicationKey(snap))
	if err != nil || !env.IsSuccess() {
		return sess.State.Get(), env, err
	}

	raw := []byte(env.Data)
	if len(raw) == 0 {
		// sections sent at the top level of the envelope
		raw, err = env.MarshalJSON()
		if err != nil {
			return sess.State.Get(), env, fmt.Errorf("re-encode envelope: %w", err)
		}
	}

	profileStatus, loanAcNo := ExtractBasicFields(raw)
	state := MapAggregateResponse(raw, domain.BasicInfo{
		ApplicationID: snap.ApplicationID,
		AccountNumber: snap.AccountNumber,
		CustomerID:    snap.CustomerID,
		ProfileStatus: profileStatus,
		LoanAcNo:      loanAcNo,
	})
	sess.State.Replace(state)
	return sess.State.Get(), env, nil
}

// LoadDashboard refreshes only the dashboard section
func (s *WizardService) LoadDashboard(ctx context.Context, sess *WizardSession) (*domain.Dashboard, origination.Envelope, error) {
	snap := sess.Snapshot()
	env, err := s.api.Dashboard(ctx, origination.CustomerKey{
		CustomerID:    snap.CustomerID,
		CIF:           snap.CIF,
		AccountNumber: snap.AccountNumber,
	})
	if err != nil || !env.IsSuccess() {
		return nil, env, err
	}

	var dash domain.Dashboard
	if err := env.DecodeData(&dash); err != nil {
		s.log.WithError(err).Warn("dashboard data unreadable")
		return nil, env, nil
	}
	sess.State.SetDashboard(&dash)
	return &dash, env, nil
}

// MasterList returns a master-data list such as districts or loan purposes
func (s *WizardService) MasterList(ctx context.Context, listType, parentID string) (origination.Envelope, error) {
	return s.api.MasterList(ctx, origination.MasterListRequest{ListType: listType, ParentID: parentID})
}

// CalculateEMI quotes an instalment for the loan step
func (s *WizardService) CalculateEMI(ctx context.Context, sess *WizardSession, in EMIInput) (origination.Envelope, error) {
	if in.LoanAmount <= 0 || in.TenureMonths <= 0 {
		return origination.Envelope{}, domain.ErrInvalidLoanInput
	}
	return s.api.CalculateEMI(ctx, origination.EMIRequest{
		ApplicationID: sess.Snapshot().ApplicationID,
		ProductCode:   in.ProductCode,
		LoanAmount:    in.LoanAmount,
		TenureMonths:  in.TenureMonths,
	})
}

func (s *WizardService) ListLiabilities(ctx context.Context, sess *WizardSession) (origination.Envelope, error) {
	return s.api.ListLiabilities(ctx, applicationKey(sess.Snapshot()))
}

func (s *WizardService) SaveLiability(ctx context.Context, sess *WizardSession, in LiabilityInput) (origination.Envelope, error) {
	return s.api.SaveLiability(ctx, origination.LiabilityRequest{
		ApplicationKey:    applicationKey(sess.Snapshot()),
		LiabilityID:       in.LiabilityID,
		InstitutionName:   in.InstitutionName,
		LoanType:          in.LoanType,
		OutstandingAmount: in.OutstandingAmount,
		EMIAmount:         in.EMIAmount,
	})
}

func (s *WizardService) DeleteLiability(ctx context.Context, sess *WizardSession, liabilityID string) (origination.Envelope, error) {
	if liabilityID == "" {
		return origination.Envelope{}, domain.ErrInvalidInput
	}
	return s.api.DeleteLiability(ctx, origination.LiabilityKey{
		ApplicationKey: applicationKey(sess.Snapshot()),
		LiabilityID:    liabilityID,
	})
}

// CustomerInfo returns the customer profile the backend holds for the session
func (s *WizardService) CustomerInfo(ctx context.Context, sess *WizardSession) (origination.Envelope, error) {
	snap := sess.Snapshot()
	return s.api.CustomerInfo(ctx, origination.CustomerKey{
		CustomerID:    snap.CustomerID,
		CIF:           snap.CIF,
		AccountNumber: snap.AccountNumber,
	})
}
