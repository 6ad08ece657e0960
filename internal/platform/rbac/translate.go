package rbac

import "strings"

// resourceTranslations are the client-facing display names used by the audit
// trail listing.
var resourceTranslations = map[string]string{
	"users":          "Usuários",
	"facilities":     "Unidades",
	"rooms":          "Salas",
	"professionals":  "Profissionais",
	"patients":       "Pacientes",
	"appointments":   "Agendamentos",
	"evolutions":     "Evoluções",
	"documents":      "Documentos",
	"reports":        "Relatórios",
	"insurancePlans": "Planos de Saúde",
	"dashboard":      "Painel",
	"auditLogs":      "Logs de Auditoria",
}

var actionTranslations = map[string]string{
	"create":             "Criação",
	"read":               "Leitura",
	"update":             "Atualização",
	"delete":             "Exclusão",
	"approve":            "Aprovação",
	"reject":             "Rejeição",
	"sign":               "Assinatura",
	"share":              "Compartilhamento",
	"generate":           "Geração",
	"export":             "Exportação",
	"manage":             "Gerenciamento",
	"confirm":            "Confirmação",
	"cancel":             "Cancelamento",
	"approval_requested": "Solicitação de Aprovação",
}

// ResourceText returns the display name for a resource, falling back to the
// raw value for resources without a translation.
func ResourceText(resource string) string {
	if text, ok := resourceTranslations[resource]; ok {
		return text
	}
	return resource
}

// ActionText returns the display name for an action in the textual grammar,
// appending the ownership suffix when present. Unknown bases fall back to the
// raw value.
func ActionText(action string) string {
	base, rest, _ := strings.Cut(action, ":")
	text, ok := actionTranslations[base]
	if !ok {
		text = base
	}
	switch rest {
	case "own":
		text += " (Próprio)"
	case "own:supervised":
		text += " (Supervisionado)"
	}
	return text
}

// Translations exposes both maps for the admin metadata endpoint.
func Translations() map[string]map[string]string {
	resources := make(map[string]string, len(resourceTranslations))
	for k, v := range resourceTranslations {
		resources[k] = v
	}
	actions := make(map[string]string, len(actionTranslations))
	for k, v := range actionTranslations {
		actions[k] = v
	}
	return map[string]map[string]string{
		"resources": resources,
		"actions":   actions,
	}
}
