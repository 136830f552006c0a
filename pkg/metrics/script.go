package metrics

import (
	"fmt"
	"strings"
)

// ScriptInput carries the client fields an outreach script interpolates.
type ScriptInput struct {
	FullName       string
	LTV            float64
	DaysSinceVisit float64
	Debt           float64
	Message        MessageType
}

// GenerateScript renders the contact message for a client, dispatching on the
// message tag. Output is fixed Spanish copy with the client's first name,
// debt and LTV in thousands, and days since the last visit interpolated. An
// empty name yields a valid message with a blank name slot; unknown tags fall
// back to the standard template.
func GenerateScript(in ScriptInput) string {
	name := firstName(in.FullName)
	days := int(in.DaysSinceVisit)
	debtK := in.Debt / 1000
	ltvK := in.LTV / 1000

	switch in.Message {
	case MessagePremium:
		return fmt.Sprintf(
			"Hola %s, te saluda tu clínica. Como paciente preferente (historial de $%.0fK) queremos ofrecerte una evaluación sin costo. Han pasado %d días desde tu última visita y mantienes un saldo de $%.0fK; podemos coordinar un plan de pago a tu medida. ¿Agendamos esta semana?",
			name, ltvK, days, debtK,
		)
	case MessageAltoValor:
		return fmt.Sprintf(
			"Hola %s, te escribimos de la clínica. Eres un paciente importante para nosotros y notamos que han pasado %d días desde tu última visita. Tienes un saldo pendiente de $%.0fK; nos encantaría ayudarte a retomar tu tratamiento. ¿Te acomoda una hora esta semana?",
			name, days, debtK,
		)
	default:
		return fmt.Sprintf(
			"Hola %s, te escribimos de la clínica. Han pasado %d días desde tu última visita y registras un saldo pendiente de $%.0fK. ¿Te gustaría agendar una hora para ponerte al día?",
			name, days, debtK,
		)
	}
}

// firstName takes the first token of a full name, honoring a leading
// "Apellido, Nombre" comma before splitting on spaces.
func firstName(full string) string {
	trimmed := strings.TrimSpace(full)
	if trimmed == "" {
		return ""
	}
	if idx := strings.Index(trimmed, ","); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
