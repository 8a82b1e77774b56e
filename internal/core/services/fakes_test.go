package services

import (
	"context"
	"sync"

	"tarit-loan/internal/adapters/origination"
)

func okEnvelope() origination.Envelope {
	return origination.Envelope{Status: "200", Message: "success"}
}

func mustEnvelope(body string) origination.Envelope {
	env, err := origination.DecodeEnvelope([]byte(body))
	if err != nil {
		panic(err)
	}
	return env
}

// fakeAPI answers every operation from a per-operation queue; the last queued
// envelope repeats, and an empty queue answers success.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string][]origination.Envelope
	calls     map[string][]any
	err       error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: make(map[string][]origination.Envelope),
		calls:     make(map[string][]any),
	}
}

func (f *fakeAPI) on(op string, envs ...origination.Envelope) *fakeAPI {
	f.mu.Lock()
	f.responses[op] = envs
	f.mu.Unlock()
	return f
}

func (f *fakeAPI) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[op])
}

func (f *fakeAPI) lastCall(op string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.calls[op]
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

func (f *fakeAPI) respond(op string, req any) (origination.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op] = append(f.calls[op], req)
	if f.err != nil {
		return origination.Envelope{}, f.err
	}
	q := f.responses[op]
	if len(q) == 0 {
		return okEnvelope(), nil
	}
	env := q[0]
	if len(q) > 1 {
		f.responses[op] = q[1:]
	}
	return env, nil
}

func (f *fakeAPI) SendOTP(_ context.Context, req origination.SendOTPRequest) (origination.Envelope, error) {
	return f.respond("SendOTP", req)
}

func (f *fakeAPI) VerifyOTP(_ context.Context, req origination.VerifyOTPRequest) (origination.Envelope, error) {
	return f.respond("VerifyOTP", req)
}

func (f *fakeAPI) CustomerInfo(_ context.Context, req origination.CustomerKey) (origination.Envelope, error) {
	return f.respond("CustomerInfo", req)
}

func (f *fakeAPI) Dashboard(_ context.Context, req origination.CustomerKey) (origination.Envelope, error) {
	return f.respond("Dashboard", req)
}

func (f *fakeAPI) CreateApplication(_ context.Context, req origination.CreateApplicationRequest) (origination.Envelope, error) {
	return f.respond("CreateApplication", req)
}

func (f *fakeAPI) FetchApplication(_ context.Context, req origination.ApplicationKey) (origination.Envelope, error) {
	return f.respond("FetchApplication", req)
}

func (f *fakeAPI) MasterList(_ context.Context, req origination.MasterListRequest) (origination.Envelope, error) {
	return f.respond("MasterList", req)
}

func (f *fakeAPI) SavePersonal(_ context.Context, req origination.PersonalInfoRequest) (origination.Envelope, error) {
	return f.respond("SavePersonal", req)
}

func (f *fakeAPI) SaveAddress(_ context.Context, req origination.AddressRequest) (origination.Envelope, error) {
	return f.respond("SaveAddress", req)
}

func (f *fakeAPI) ListLiabilities(_ context.Context, req origination.ApplicationKey) (origination.Envelope, error) {
	return f.respond("ListLiabilities", req)
}

func (f *fakeAPI) SaveLiability(_ context.Context, req origination.LiabilityRequest) (origination.Envelope, error) {
	return f.respond("SaveLiability", req)
}

func (f *fakeAPI) DeleteLiability(_ context.Context, req origination.LiabilityKey) (origination.Envelope, error) {
	return f.respond("DeleteLiability", req)
}

func (f *fakeAPI) ConfirmLiabilities(_ context.Context, req origination.ConfirmLiabilitiesRequest) (origination.Envelope, error) {
	return f.respond("ConfirmLiabilities", req)
}

func (f *fakeAPI) CalculateEMI(_ context.Context, req origination.EMIRequest) (origination.Envelope, error) {
	return f.respond("CalculateEMI", req)
}

func (f *fakeAPI) SaveLoanInfo(_ context.Context, req origination.LoanInfoRequest) (origination.Envelope, error) {
	return f.respond("SaveLoanInfo", req)
}

func (f *fakeAPI) UploadDocument(_ context.Context, req origination.DocumentUploadRequest) (origination.Envelope, error) {
	return f.respond("UploadDocument", req)
}

func (f *fakeAPI) SubmitApplication(_ context.Context, req origination.SubmitRequest) (origination.Envelope, error) {
	return f.respond("SubmitApplication", req)
}

type fakeFaces struct {
	ok  bool
	err error
}

func (f fakeFaces) DetectFace([]byte) (bool, error) { return f.ok, f.err }

type fakeInvalidator struct{ n int }

func (f *fakeInvalidator) Invalidate() { f.n++ }
