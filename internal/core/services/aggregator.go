package services

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
)

// Section keys of the composite fetch-all payload
const (
	sectionPersonal     = "personalInfo"
	sectionContact      = "contactInfo"
	sectionProfessional = "professionalInfo"
	sectionLoan         = "loanInfo"
	sectionLiability    = "liabilityInfo"
	sectionDocument     = "documentInfo"
)

var aggregateLog = logrus.WithField("component", "aggregator")

// MapAggregateResponse turns the fetch-all payload into the wizard read model.
// A section that is missing or flagged as "no record" is simply absent. Loosely
// typed fields never drop a record.
func MapAggregateResponse(raw []byte, basic domain.BasicInfo) domain.ApplicationDataState {
	state := domain.ApplicationDataState{
		ApplicationID: basic.ApplicationID,
		AccountNumber: basic.AccountNumber,
		CustomerID:    basic.CustomerID,
		ProfileStatus: basic.ProfileStatus,
		LoanAcNo:      basic.LoanAcNo,
		Liabilities:   []domain.Liability{},
		Documents:     []domain.Document{},
		IsDataLoaded:  true,
		IsReadOnly:    true,
	}

	sections, err := splitSections(raw)
	if err != nil {
		aggregateLog.WithError(err).Warn("aggregate payload unreadable")
	}

	state.PersonalInfo = firstRecord[domain.PersonalInfo](sectionPersonal, sections[sectionPersonal])
	state.ContactInfo = firstRecord[domain.ContactInfo](sectionContact, sections[sectionContact])
	state.ProfessionalInfo = firstRecord[domain.ProfessionalInfo](sectionProfessional, sections[sectionProfessional])
	state.LoanInfo = firstRecord[domain.LoanInfo](sectionLoan, sections[sectionLoan])
	if state.LoanInfo != nil {
		state.LoanInfo.ApplicationID = domain.FlexString(basic.ApplicationID)
	}
	if l := decodeRecords[domain.Liability](sectionLiability, sections[sectionLiability]); len(l) > 0 {
		state.Liabilities = l
	}
	if d := decodeRecords[domain.Document](sectionDocument, sections[sectionDocument]); len(d) > 0 {
		state.Documents = d
	}

	state.HasPersonalData = state.PersonalInfo != nil
	state.HasContactData = state.ContactInfo != nil
	state.HasProfessionalData = state.ProfessionalInfo != nil
	state.HasLoanData = state.LoanInfo != nil
	state.HasLiabilityData = len(state.Liabilities) > 0
	state.HasDocumentData = len(state.Documents) > 0
	return state
}

func splitSections(raw []byte) (map[string]jx.Raw, error) {
	sections := make(map[string]jx.Raw)
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Object {
		return sections, errors.New("aggregate payload is not an object")
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		r, err := d.Raw()
		if err != nil {
			return err
		}
		sections[key] = append(jx.Raw(nil), r...)
		return nil
	})
	return sections, err
}

// sectionElements resolves the three section shapes: a bare record, a bare
// array, or a {status, dataList} wrapper. A wrapper carrying the no-record
// sentinel yields nothing.
func sectionElements(raw jx.Raw) ([]jx.Raw, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw.Type() {
	case jx.Null:
		return nil, nil
	case jx.Array:
		return arrayElements(raw)
	case jx.Object:
	default:
		return nil, errors.Errorf("unexpected section type %s", raw.Type())
	}

	var (
		list    jx.Raw
		hasList bool
		status  string
	)
	err := jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "dataList":
			r, err := d.Raw()
			if err != nil {
				return err
			}
			list, hasList = append(jx.Raw(nil), r...), true
			return nil
		case "status":
			s, err := origination.DecodeScalar(d)
			status = s
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}

	if !hasList {
		return []jx.Raw{raw}, nil
	}
	if origination.IsNoRecord(status) {
		return nil, nil
	}
	switch list.Type() {
	case jx.Array:
		return arrayElements(list)
	case jx.Object:
		return []jx.Raw{list}, nil
	default:
		return nil, nil
	}
}

func arrayElements(raw jx.Raw) ([]jx.Raw, error) {
	var out []jx.Raw
	err := jx.DecodeBytes(raw).Arr(func(d *jx.Decoder) error {
		r, err := d.Raw()
		if err != nil {
			return err
		}
		out = append(out, append(jx.Raw(nil), r...))
		return nil
	})
	return out, err
}

func recordStatus(raw jx.Raw) string {
	var status string
	_ = jx.DecodeBytes(raw).Obj(func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		s, err := origination.DecodeScalar(d)
		status = s
		return err
	})
	return status
}

// keepRecord decodes one element unless it is not an object or carries the sentinel
func keepRecord[T any](section string, el jx.Raw) (T, bool) {
	var v T
	if el.Type() != jx.Object || origination.IsNoRecord(recordStatus(el)) {
		return v, false
	}
	if err := json.Unmarshal(el, &v); err != nil {
		aggregateLog.WithError(err).WithField("section", section).Debug("record partially decoded")
	}
	return v, true
}

func decodeRecords[T any](section string, raw jx.Raw) []T {
	elems, err := sectionElements(raw)
	if err != nil {
		aggregateLog.WithError(err).WithField("section", section).Warn("section skipped")
		return nil
	}
	out := make([]T, 0, len(elems))
	for _, el := range elems {
		if v, ok := keepRecord[T](section, el); ok {
			out = append(out, v)
		}
	}
	return out
}

// firstRecord takes the first element of a singular section, then applies the sentinel filter
func firstRecord[T any](section string, raw jx.Raw) *T {
	elems, err := sectionElements(raw)
	if err != nil {
		aggregateLog.WithError(err).WithField("section", section).Warn("section skipped")
		return nil
	}
	if len(elems) == 0 {
		return nil
	}
	v, ok := keepRecord[T](section, elems[0])
	if !ok {
		return nil
	}
	return &v
}

// ExtractBasicFields reads profileStatus and loanAcNo from the composite payload
func ExtractBasicFields(raw []byte) (profileStatus, loanAcNo string) {
	var head struct {
		ProfileStatus domain.FlexString `json:"profileStatus"`
		LoanAcNo      domain.FlexString `json:"loanAcNo"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", ""
	}
	return head.ProfileStatus.String(), head.LoanAcNo.String()
}
