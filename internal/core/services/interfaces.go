package services

import (
	"context"

	"tarit-loan/internal/adapters/origination"
)

// Note: the request wrapper and token manager live in adapters/origination.
// Services depend on the narrow interfaces below so tests can fake them.

// OriginationAPI is the backend surface the wizard uses
type OriginationAPI interface {
	SendOTP(ctx context.Context, req origination.SendOTPRequest) (origination.Envelope, error)
	VerifyOTP(ctx context.Context, req origination.VerifyOTPRequest) (origination.Envelope, error)
	CustomerInfo(ctx context.Context, req origination.CustomerKey) (origination.Envelope, error)
	Dashboard(ctx context.Context, req origination.CustomerKey) (origination.Envelope, error)
	CreateApplication(ctx context.Context, req origination.CreateApplicationRequest) (origination.Envelope, error)
	FetchApplication(ctx context.Context, req origination.ApplicationKey) (origination.Envelope, error)
	MasterList(ctx context.Context, req origination.MasterListRequest) (origination.Envelope, error)
	SavePersonal(ctx context.Context, req origination.PersonalInfoRequest) (origination.Envelope, error)
	SaveAddress(ctx context.Context, req origination.AddressRequest) (origination.Envelope, error)
	ListLiabilities(ctx context.Context, req origination.ApplicationKey) (origination.Envelope, error)
	SaveLiability(ctx context.Context, req origination.LiabilityRequest) (origination.Envelope, error)
	DeleteLiability(ctx context.Context, req origination.LiabilityKey) (origination.Envelope, error)
	ConfirmLiabilities(ctx context.Context, req origination.ConfirmLiabilitiesRequest) (origination.Envelope, error)
	CalculateEMI(ctx context.Context, req origination.EMIRequest) (origination.Envelope, error)
	SaveLoanInfo(ctx context.Context, req origination.LoanInfoRequest) (origination.Envelope, error)
	UploadDocument(ctx context.Context, req origination.DocumentUploadRequest) (origination.Envelope, error)
	SubmitApplication(ctx context.Context, req origination.SubmitRequest) (origination.Envelope, error)
}

// SessionMirror persists selected session fields outside the process
type SessionMirror interface {
	Save(ctx context.Context, sessionID string, fields map[string]string) error
	Load(ctx context.Context, sessionID string) (map[string]string, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// FaceDetector decides whether a captured photo contains a face
type FaceDetector interface {
	DetectFace(image []byte) (bool, error)
}
