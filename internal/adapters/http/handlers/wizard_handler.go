package handlers

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tarit-loan/internal/adapters/http/middleware"
	"tarit-loan/internal/adapters/origination"
	"tarit-loan/internal/core/domain"
	"tarit-loan/internal/core/services"
	"tarit-loan/internal/pkg/i18n"
	"tarit-loan/internal/pkg/response"
)

// maxFaceBytes caps the photo read from a multipart upload
const maxFaceBytes = 5 << 20

// WizardHandler drives the eight-step application wizard
type WizardHandler struct {
	wizard *services.WizardService
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizard *services.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// StepView is one entry of the localized step list
type StepView struct {
	Step  int    `json:"step"`
	Title string `json:"title"`
}

func stepPayload(c *fiber.Ctx, sess *services.WizardSession, step domain.Step) fiber.Map {
	return fiber.Map{
		"step":      int(step),
		"title":     i18n.StepTitle(middleware.Lang(c), int(step)),
		"submitted": sess.Sequencer.Submitted(),
	}
}

// stepResult answers a step transition
func stepResult(c *fiber.Ctx, sess *services.WizardSession, step domain.Step, env origination.Envelope, err error) error {
	if err != nil {
		return fail(c, env, err)
	}
	message := env.Message
	if message == "" {
		message = i18n.T(middleware.Lang(c), i18n.MsgOK)
	}
	return response.Success(c, message, stepPayload(c, sess, step))
}

// State returns the current step with every step title
func (h *WizardHandler) State(c *fiber.Ctx) error {
	sess := sessionOf(c)
	lang := middleware.Lang(c)

	steps := make([]StepView, 0, int(domain.LastStep))
	for s := domain.FirstStep; s <= domain.LastStep; s++ {
		steps = append(steps, StepView{Step: int(s), Title: i18n.StepTitle(lang, int(s))})
	}

	payload := stepPayload(c, sess, sess.Sequencer.Current())
	payload["steps"] = steps
	return response.Success(c, i18n.T(lang, i18n.MsgOK), payload)
}

// Back moves one step back; from the first step the client returns to the dashboard
func (h *WizardHandler) Back(c *fiber.Ctx) error {
	sess := sessionOf(c)
	step, exited := h.wizard.Back(c.Context(), sess)

	payload := stepPayload(c, sess, step)
	payload["exitToDashboard"] = exited
	return response.Success(c, i18n.T(middleware.Lang(c), i18n.MsgOK), payload)
}

func (h *WizardHandler) Personal(c *fiber.Ctx) error {
	var req services.PersonalInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	sess := sessionOf(c)
	step, env, err := h.wizard.SavePersonal(c.Context(), sess, req)
	return stepResult(c, sess, step, env, err)
}

func (h *WizardHandler) Address(c *fiber.Ctx) error {
	var req services.AddressInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	sess := sessionOf(c)
	step, env, err := h.wizard.SaveAddress(c.Context(), sess, req)
	return stepResult(c, sess, step, env, err)
}

func (h *WizardHandler) Liabilities(c *fiber.Ctx) error {
	var req services.LiabilityConfirmInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	sess := sessionOf(c)
	step, env, err := h.wizard.ConfirmLiabilities(c.Context(), sess, req)
	return stepResult(c, sess, step, env, err)
}

func (h *WizardHandler) Loan(c *fiber.Ctx) error {
	var req services.LoanInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	sess := sessionOf(c)
	step, env, err := h.wizard.SaveLoan(c.Context(), sess, req)
	return stepResult(c, sess, step, env, err)
}

func (h *WizardHandler) Summary(c *fiber.Ctx) error {
	sess := sessionOf(c)
	step, env, err := h.wizard.ConfirmSummary(c.Context(), sess)
	return stepResult(c, sess, step, env, err)
}

// FaceRequest is the JSON form of the face step; image is base64 or a data URL
type FaceRequest struct {
	Image    string `json:"image"`
	FileName string `json:"fileName"`
}

// Face accepts the photo as multipart field "image" or as base64 JSON
func (h *WizardHandler) Face(c *fiber.Ctx) error {
	lang := middleware.Lang(c)
	in, err := readFace(c)
	if err != nil {
		return response.BadRequest(c, i18n.T(lang, i18n.MsgImageRequired))
	}

	sess := sessionOf(c)
	step, env, err := h.wizard.CaptureFace(c.Context(), sess, in)
	return stepResult(c, sess, step, env, err)
}

func readFace(c *fiber.Ctx) (services.FaceInput, error) {
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			return services.FaceInput{}, err
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxFaceBytes))
		if err != nil {
			return services.FaceInput{}, err
		}
		return services.FaceInput{Image: data, FileName: file.Filename}, nil
	}

	var req FaceRequest
	if err := c.BodyParser(&req); err != nil {
		return services.FaceInput{}, err
	}
	encoded := req.Image
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return services.FaceInput{}, err
	}
	return services.FaceInput{Image: data, FileName: req.FileName}, nil
}

func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	var req services.SubmitInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(middleware.Lang(c), i18n.MsgInvalidBody))
	}
	sess := sessionOf(c)
	step, env, err := h.wizard.Submit(c.Context(), sess, req)
	return stepResult(c, sess, step, env, err)
}
