package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type TranslationHandler struct {
	translator Translator
}

func NewTranslationHandler(t Translator) *TranslationHandler {
	return &TranslationHandler{translator: t}
}

type TranslateRequest struct {
	Text           string `json:"text" validate:"required,max=4000"`
	TargetLanguage string `json:"target_language" validate:"required,min=2,max=40"`
}

func (h *TranslationHandler) Translate(c *fiber.Ctx) error {
	var req TranslateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	out, err := h.translator.Translate(c.UserContext(), req.Text, req.TargetLanguage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"translated_text": out, "target_language": req.TargetLanguage})
}
