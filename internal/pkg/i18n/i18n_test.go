package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, language.Bengali, Match("bn", ""))
	assert.Equal(t, language.Bengali, Match("", "bn-BD,bn;q=0.9,en;q=0.5"))
	assert.Equal(t, language.English, Match("", "en-US,en;q=0.9"))
	assert.Equal(t, language.English, Match("", "fr-FR"))
	assert.Equal(t, language.English, Match("", ""))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Mobile number is required", T(language.English, MsgMobileRequired))
	assert.Equal(t, "মোবাইল নম্বর আবশ্যক", T(language.Bengali, MsgMobileRequired))
}

func TestStepTitle(t *testing.T) {
	assert.Equal(t, "Face Verification", StepTitle(language.English, 7))
	assert.Equal(t, "সারসংক্ষেপ", StepTitle(language.Bengali, 6))
}
