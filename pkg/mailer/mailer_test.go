package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.local", Port: 25, From: "citas@clinica.pe", FromName: "Clínica Dental"})

	m := s.build(Message{
		To:          "ana@example.com",
		Subject:     "Recordatorio de cita",
		TextBody:    "Su cita es mañana",
		HTMLBody:    "<p>Su cita es mañana</p>",
		Attachments: []Attachment{{Name: "presupuesto.pdf", Data: []byte("%PDF-1.3")}},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "To: ana@example.com")
	assert.Contains(t, raw, "citas@clinica.pe")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, `filename="presupuesto.pdf"`)
}

func TestNewFallsBackToLogSender(t *testing.T) {
	s := New(Config{}, zerolog.Nop())
	_, ok := s.(LogSender)
	assert.True(t, ok)
	assert.NoError(t, s.Send(context.Background(), Message{To: "x@y.z"}))

	_, ok = New(Config{Host: "smtp", From: "a@b.c"}, zerolog.Nop()).(*SMTPSender)
	assert.True(t, ok)
}
