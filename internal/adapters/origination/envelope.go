package origination

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrNotEnvelope is returned when a response body is not a JSON object
var ErrNotEnvelope = errors.New("response is not a JSON envelope")

// Envelope is the normalized response shape of every origination call.
// Status is kept as a string even when the backend sends a number.
type Envelope struct {
	Status   string
	Message  string
	Data     jx.Raw
	DataList jx.Raw
	Extra    map[string]jx.Raw
}

// IsSuccess is the single success predicate used across the client:
// status "200" and a message of "success" in any letter case, nothing else.
func (e Envelope) IsSuccess() bool {
	return e.Status == StatusOK && strings.ToLower(e.Message) == "success"
}

// IsAuthExpired reports whether the backend rejected the credential
func (e Envelope) IsAuthExpired() bool {
	return e.Status == StatusUnauthorized ||
		strings.Contains(strings.ToLower(e.Message), "token expired")
}

// Failure builds the synthetic "500" envelope used for local failures
func Failure(message string) Envelope {
	return Envelope{Status: StatusFailure, Message: message}
}

// IsNoRecord reports whether a record status is the "no data" sentinel
func IsNoRecord(status string) bool {
	return status == StatusNoRecord || status == MessageNoRecord
}

// DecodeData unmarshals the data field, falling back to the first element of dataList
func (e Envelope) DecodeData(v any) error {
	switch {
	case len(e.Data) > 0 && e.Data.Type() != jx.Null:
		return json.Unmarshal(e.Data, v)
	case len(e.DataList) > 0 && e.DataList.Type() == jx.Array:
		var first jx.Raw
		err := jx.DecodeBytes(e.DataList).Arr(func(d *jx.Decoder) error {
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			if first == nil {
				first = append(jx.Raw(nil), raw...)
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "decode dataList")
		}
		if first == nil {
			return nil
		}
		return json.Unmarshal(first, v)
	}
	return nil
}

// ExtraString returns a top-level extra field rendered as a string
func (e Envelope) ExtraString(key string) string {
	raw, ok := e.Extra[key]
	if !ok {
		return ""
	}
	s, err := DecodeScalar(jx.DecodeBytes(raw))
	if err != nil {
		return ""
	}
	return s
}

// DecodeEnvelope parses a response body. Unknown top-level keys land in Extra.
func DecodeEnvelope(body []byte) (Envelope, error) {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return Envelope{}, ErrNotEnvelope
	}

	var env Envelope
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			s, err := DecodeScalar(d)
			env.Status = s
			return err
		case "message":
			s, err := DecodeScalar(d)
			env.Message = s
			return err
		}

		raw, err := d.Raw()
		if err != nil {
			return err
		}
		raw = append(jx.Raw(nil), raw...)

		switch key {
		case "data":
			env.Data = raw
		case "dataList":
			env.DataList = raw
		default:
			if env.Extra == nil {
				env.Extra = make(map[string]jx.Raw)
			}
			env.Extra[key] = raw
		}
		return nil
	})
	if err != nil {
		return Envelope{}, errors.Wrap(err, "decode envelope")
	}
	return env, nil
}

// DecodeScalar reads a string, number, bool or null as a string.
// Objects and arrays are skipped and read as empty.
func DecodeScalar(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return string(n), nil
	case jx.Bool:
		b, err := d.Bool()
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case jx.Null:
		return "", d.Null()
	default:
		return "", d.Skip()
	}
}

// MarshalJSON writes the envelope back in its wire shape, extras sorted by key
func (e Envelope) MarshalJSON() ([]byte, error) {
	var w jx.Encoder
	w.ObjStart()
	w.FieldStart("status")
	w.Str(e.Status)
	w.FieldStart("message")
	w.Str(e.Message)
	if len(e.Data) > 0 {
		w.FieldStart("data")
		w.Raw(e.Data)
	}
	if len(e.DataList) > 0 {
		w.FieldStart("dataList")
		w.Raw(e.DataList)
	}

	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.FieldStart(k)
		w.Raw(e.Extra[k])
	}
	w.ObjEnd()
	return w.Bytes(), nil
}
