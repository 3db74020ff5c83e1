package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dancrewzus/webinar-wizard/internal/notify"
)

const appName = "Webinar Wizard"

// Email is a composed notification ready to send.
type Email struct {
	Subject string
	HTML    string
}

// Composer turns a notification message into email subject and body.
type Composer interface {
	Compose(ctx context.Context, msg notify.Message) (Email, error)
}

const composeSystemPrompt = `Eres el asistente de correo de la plataforma de webinars "` + appName + `".
Redacta correos breves y cordiales en español. Responde SOLO con un objeto JSON
con las claves "title" (asunto del correo) y "message" (cuerpo del correo en
HTML sencillo, sin etiquetas html/head/body).`

// OpenAIComposer writes the email text with a chat completion in JSON mode.
type OpenAIComposer struct {
	client *openai.Client
	model  string
}

// NewOpenAIComposer creates a composer backed by the OpenAI API.
func NewOpenAIComposer(apiKey, model string) *OpenAIComposer {
	return &OpenAIComposer{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIComposer) Compose(ctx context.Context, msg notify.Message) (Email, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: composeUserPrompt(msg)},
		},
	})
	if err != nil {
		return Email{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Email{}, fmt.Errorf("chat completion returned no choices")
	}

	var out struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return Email{}, fmt.Errorf("parse completion: %w", err)
	}
	if out.Title == "" || out.Message == "" {
		return Email{}, fmt.Errorf("completion missing title or message")
	}
	return Email{Subject: out.Title, HTML: wrapHTML(out.Title, out.Message)}, nil
}

func composeUserPrompt(msg notify.Message) string {
	var b strings.Builder
	switch msg.Kind {
	case notify.KindReminder:
		b.WriteString("Escribe un recordatorio: el webinar comienza en 30 minutos.\n")
	case notify.KindAttendeeJoined:
		b.WriteString("Escribe una confirmación de inscripción al webinar.\n")
	case notify.KindAttendeeLeft:
		b.WriteString("Escribe una confirmación de baja del webinar.\n")
	case notify.KindWebinarCancelled:
		b.WriteString("Escribe un aviso de cancelación del webinar, con una disculpa.\n")
	default:
		b.WriteString("Escribe una notificación sobre el webinar.\n")
	}
	fmt.Fprintf(&b, "Webinar: %s\nPresenta: %s\nFecha: %s\nDuración: %d minutos\n",
		msg.Webinar.Title, msg.Webinar.Presenter, msg.Webinar.Date, msg.Webinar.Duration)
	if msg.Webinar.Description != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", msg.Webinar.Description)
	}
	if msg.User != nil {
		fmt.Fprintf(&b, "Destinatario: %s %s\n", msg.User.Name, msg.User.Surname)
	}
	return b.String()
}

// StaticComposer produces fixed-template emails. It is the fallback when
// no OpenAI key is configured.
type StaticComposer struct{}

func (StaticComposer) Compose(_ context.Context, msg notify.Message) (Email, error) {
	var subject, body string
	switch msg.Kind {
	case notify.KindReminder:
		subject = "Tu webinar comienza pronto"
		body = fmt.Sprintf("<p>El webinar <strong>%s</strong> comienza en 30 minutos (%s).</p>",
			msg.Webinar.Title, msg.Webinar.Date)
	case notify.KindAttendeeJoined:
		subject = "Inscripción confirmada"
		body = fmt.Sprintf("<p>Tu inscripción al webinar <strong>%s</strong> del %s quedó registrada.</p>",
			msg.Webinar.Title, msg.Webinar.Date)
	case notify.KindAttendeeLeft:
		subject = "Baja confirmada"
		body = fmt.Sprintf("<p>Tu baja del webinar <strong>%s</strong> quedó registrada.</p>",
			msg.Webinar.Title)
	case notify.KindWebinarCancelled:
		subject = "Webinar cancelado"
		body = fmt.Sprintf("<p>Lamentamos informarte que el webinar <strong>%s</strong> del %s fue cancelado.</p>",
			msg.Webinar.Title, msg.Webinar.Date)
	default:
		return Email{}, fmt.Errorf("unknown notification kind: %s", msg.Kind)
	}
	return Email{Subject: subject, HTML: wrapHTML(subject, body)}, nil
}

func wrapHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 24px;">
<h2>%s</h2>
%s
<hr style="border: none; border-top: 1px solid #ddd;">
<p style="font-size: 12px; color: #888;">%s</p>
</div>
</body>
</html>`, title, body, appName)
}
