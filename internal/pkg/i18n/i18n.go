package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by handlers and services
const (
	MsgInvalidBody        = "invalid_body"
	MsgMobileRequired     = "mobile_required"
	MsgOTPRequired        = "otp_required"
	MsgOTPCooldown        = "otp_cooldown"
	MsgOTPTooManyAttempts = "otp_too_many_attempts"
	MsgOTPNotRequested    = "otp_not_requested"
	MsgSessionRequired    = "session_required"
	MsgSessionExpired     = "session_expired"
	MsgStepPending        = "step_pending"
	MsgWrongStep          = "wrong_step"
	MsgStepNotSaved       = "step_not_saved"
	MsgNoFace             = "no_face"
	MsgImageRequired      = "image_required"
	MsgTermsRequired      = "terms_required"
	MsgAmountRequired     = "amount_required"
	MsgBackendUnavailable = "backend_unavailable"
	MsgLoggedOut          = "logged_out"
	MsgRestored           = "restored"
	MsgNotRestored        = "not_restored"
	MsgOK                 = "ok"
)

type entry struct {
	en string
	bn string
}

var catalog = map[string]entry{
	MsgInvalidBody:        {"Invalid request body", "অনুরোধের তথ্য সঠিক নয়"},
	MsgMobileRequired:     {"Mobile number is required", "মোবাইল নম্বর আবশ্যক"},
	MsgOTPRequired:        {"OTP is required", "ওটিপি আবশ্যক"},
	MsgOTPCooldown:        {"Please wait a minute before requesting a new OTP", "নতুন ওটিপি চাওয়ার আগে এক মিনিট অপেক্ষা করুন"},
	MsgOTPTooManyAttempts: {"Too many wrong OTP attempts, please request a new OTP", "অনেকবার ভুল ওটিপি দেওয়া হয়েছে, নতুন ওটিপি চান"},
	MsgOTPNotRequested:    {"No OTP found, please request a new OTP", "কোনো ওটিপি পাওয়া যায়নি, নতুন ওটিপি চান"},
	MsgSessionRequired:    {"Please log in to continue", "চালিয়ে যেতে লগইন করুন"},
	MsgSessionExpired:     {"Session expired, please log in again", "সেশনের মেয়াদ শেষ, আবার লগইন করুন"},
	MsgStepPending:        {"Please wait, a request is already in progress", "অনুগ্রহ করে অপেক্ষা করুন, একটি অনুরোধ চলমান আছে"},
	MsgWrongStep:          {"This step is not available right now", "এই ধাপটি এখন উপলব্ধ নয়"},
	MsgStepNotSaved:       {"Could not save this step", "এই ধাপটি সংরক্ষণ করা যায়নি"},
	MsgNoFace:             {"No face detected in the photo, please try again", "ছবিতে কোনো মুখ শনাক্ত হয়নি, আবার চেষ্টা করুন"},
	MsgImageRequired:      {"Photo is required", "ছবি আবশ্যক"},
	MsgTermsRequired:      {"Please accept the terms and conditions", "অনুগ্রহ করে শর্তাবলী গ্রহণ করুন"},
	MsgAmountRequired:     {"Loan amount and tenure are required", "ঋণের পরিমাণ ও মেয়াদ আবশ্যক"},
	MsgBackendUnavailable: {"Service is temporarily unavailable", "সেবাটি সাময়িকভাবে অনুপলব্ধ"},
	MsgLoggedOut:          {"Logged out successfully", "সফলভাবে লগআউট হয়েছে"},
	MsgRestored:           {"Session restored", "সেশন পুনরুদ্ধার করা হয়েছে"},
	MsgNotRestored:        {"Nothing to restore", "পুনরুদ্ধার করার কিছু নেই"},
	MsgOK:                 {"Success", "সফল"},
}

// Wizard step titles, indexed by step number
var stepTitles = map[int]entry{
	1: {"Login", "লগইন"},
	2: {"Personal Information", "ব্যক্তিগত তথ্য"},
	3: {"Address", "ঠিকানা"},
	4: {"Existing Liabilities", "বিদ্যমান দায়"},
	5: {"Loan Amount & Tenure", "ঋণের পরিমাণ ও মেয়াদ"},
	6: {"Summary", "সারসংক্ষেপ"},
	7: {"Face Verification", "মুখমণ্ডল যাচাই"},
	8: {"Terms & Submission", "শর্তাবলী ও জমা"},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Bengali})

func init() {
	for key, e := range catalog {
		mustSet(key, e)
	}
	for step, e := range stepTitles {
		mustSet(stepKey(step), e)
	}
}

func mustSet(key string, e entry) {
	if err := message.SetString(language.English, key, e.en); err != nil {
		panic(err)
	}
	if err := message.SetString(language.Bengali, key, e.bn); err != nil {
		panic(err)
	}
}

func stepKey(step int) string {
	return fmt.Sprintf("step.%d", step)
}

// Match picks English or Bengali from an explicit lang parameter and the
// Accept-Language header. Anything unrecognised falls back to English.
func Match(lang, acceptLanguage string) language.Tag {
	tag, _ := language.MatchStrings(matcher, lang, acceptLanguage)
	if base, _ := tag.Base(); base.String() == "bn" {
		return language.Bengali
	}
	return language.English
}

// T translates a message key
func T(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

// StepTitle returns the localized title for a wizard step
func StepTitle(tag language.Tag, step int) string {
	return T(tag, stepKey(step))
}
