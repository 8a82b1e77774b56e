package origination

import (
	"context"

	"tarit-loan/internal/core/domain"
)

// SendOTPRequest starts a login
type SendOTPRequest struct {
	MobileNumber  string `json:"mobileNumber"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// VerifyOTPRequest completes a login
type VerifyOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OTPReference string `json:"otpReference"`
	OTP          string `json:"otp"`
}

// CustomerKey identifies a customer in lookups
type CustomerKey struct {
	CustomerID    string `json:"customerId,omitempty"`
	CIF           string `json:"cif,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// ApplicationKey identifies an application
type ApplicationKey struct {
	ApplicationID string `json:"applicationId"`
	CustomerID    string `json:"customerId,omitempty"`
	CIF           string `json:"cif,omitempty"`
}

// CreateApplicationRequest opens a new application for a logged-in customer
type CreateApplicationRequest struct {
	CustomerID        string `json:"customerId"`
	CIF               string `json:"cif,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	LoginID           string `json:"loginId,omitempty"`
	RegimentReference string `json:"regimentReference,omitempty"`
}

// MasterListRequest fetches one master-data list (districts, loan purposes, ...)
type MasterListRequest struct {
	ListType string `json:"listType"`
	ParentID string `json:"parentId,omitempty"`
}

// PersonalInfoRequest saves step 2
type PersonalInfoRequest struct {
	ApplicationKey
	Email         string `json:"email,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	SpouseName    string `json:"spouseName,omitempty"`
	Confirmed     bool   `json:"confirmed"`
}

// AddressRequest saves step 3
type AddressRequest struct {
	ApplicationKey
	PresentAddress   domain.Address `json:"presentAddress"`
	PermanentAddress domain.Address `json:"permanentAddress"`
	SameAsPresent    bool           `json:"sameAsPresent"`
}

// LiabilityRequest creates or updates one liability
type LiabilityRequest struct {
	ApplicationKey
	LiabilityID       string  `json:"liabilityId,omitempty"`
	InstitutionName   string  `json:"institutionName"`
	LoanType          string  `json:"loanType"`
	OutstandingAmount float64 `json:"outstandingAmount"`
	EMIAmount         float64 `json:"emiAmount"`
}

// LiabilityKey addresses one liability for deletion
type LiabilityKey struct {
	ApplicationKey
	LiabilityID string `json:"liabilityId"`
}

// ConfirmLiabilitiesRequest closes step 4
type ConfirmLiabilitiesRequest struct {
	ApplicationKey
	HasLiability bool `json:"hasLiability"`
}

// EMIRequest asks the backend for an instalment quote
type EMIRequest struct {
	ApplicationID string  `json:"applicationId,omitempty"`
	ProductCode   string  `json:"productCode,omitempty"`
	LoanAmount    float64 `json:"loanAmount"`
	TenureMonths  int     `json:"tenureMonths"`
}

// LoanInfoRequest saves step 5
type LoanInfoRequest struct {
	ApplicationKey
	ProductCode  string  `json:"productCode,omitempty"`
	LoanAmount   float64 `json:"loanAmount"`
	TenureMonths int     `json:"tenureMonths"`
	EMIAmount    float64 `json:"emiAmount,omitempty"`
	Purpose      string  `json:"purpose,omitempty"`
}

// DocumentUploadRequest carries a base64 file, used for the face photo
type DocumentUploadRequest struct {
	ApplicationKey
	DocumentType string `json:"documentType"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	Content      string `json:"content"`
}

// SubmitRequest is the final submission
type SubmitRequest struct {
	ApplicationKey
	AccountNumber string `json:"accountNumber,omitempty"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// API exposes the origination operations on top of the request wrapper.
type API struct {
	client Requester
}

func NewAPI(client Requester) *API {
	return &API{client: client}
}

func (a *API) post(ctx context.Context, path string, body any) (Envelope, error) {
	return a.client.Request(ctx, path, RequestOptions{Body: body})
}

func (a *API) SendOTP(ctx context.Context, req SendOTPRequest) (Envelope, error) {
	return a.post(ctx, PathSendOTP, req)
}

func (a *API) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (Envelope, error) {
	return a.post(ctx, PathVerifyOTP, req)
}

func (a *API) CustomerInfo(ctx context.Context, req CustomerKey) (Envelope, error) {
	return a.post(ctx, PathCustomerInfo, req)
}

func (a *API) Dashboard(ctx context.Context, req CustomerKey) (Envelope, error) {
	return a.post(ctx, PathDashboard, req)
}

func (a *API) CreateApplication(ctx context.Context, req CreateApplicationRequest) (Envelope, error) {
	return a.post(ctx, PathCreateApplication, req)
}

// FetchApplication returns the composite record consumed by the aggregator
func (a *API) FetchApplication(ctx context.Context, req ApplicationKey) (Envelope, error) {
	return a.post(ctx, PathFetchApplication, req)
}

func (a *API) MasterList(ctx context.Context, req MasterListRequest) (Envelope, error) {
	return a.post(ctx, PathMasterList, req)
}

func (a *API) SavePersonal(ctx context.Context, req PersonalInfoRequest) (Envelope, error) {
	return a.post(ctx, PathSavePersonal, req)
}

func (a *API) SaveAddress(ctx context.Context, req AddressRequest) (Envelope, error) {
	return a.post(ctx, PathSaveAddress, req)
}

func (a *API) ListLiabilities(ctx context.Context, req ApplicationKey) (Envelope, error) {
	return a.post(ctx, PathListLiabilities, req)
}

func (a *API) SaveLiability(ctx context.Context, req LiabilityRequest) (Envelope, error) {
	return a.post(ctx, PathSaveLiability, req)
}

func (a *API) DeleteLiability(ctx context.Context, req LiabilityKey) (Envelope, error) {
	return a.post(ctx, PathDeleteLiability, req)
}

func (a *API) ConfirmLiabilities(ctx context.Context, req ConfirmLiabilitiesRequest) (Envelope, error) {
	return a.post(ctx, PathConfirmLiability, req)
}

func (a *API) CalculateEMI(ctx context.Context, req EMIRequest) (Envelope, error) {
	return a.post(ctx, PathCalculateEMI, req)
}

func (a *API) SaveLoanInfo(ctx context.Context, req LoanInfoRequest) (Envelope, error) {
	return a.post(ctx, PathSaveLoanInfo, req)
}

func (a *API) UploadDocument(ctx context.Context, req DocumentUploadRequest) (Envelope, error) {
	return a.post(ctx, PathUploadDocument, req)
}

func (a *API) SubmitApplication(ctx context.Context, req SubmitRequest) (Envelope, error) {
	return a.post(ctx, PathSubmitApplication, req)
}
