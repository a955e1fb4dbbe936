// Package tenantcfg fetches and caches per-tenant bot configuration from
// the admin backend.
package tenantcfg

// Config is the per-tenant bot configuration served by the admin backend.
// Missing fields fall back to the built-in defaults below so a sparse
// backend document never breaks message composition.
type Config struct {
	SystemPrompt     string `json:"system_prompt"`
	Greeting         string `json:"greeting"`
	NoResults        string `json:"no_results"`
	EscalationCopy   string `json:"escalation_message"`
	ManagerContact   string `json:"manager_contact"`
	EscalationPolicy string `json:"escalation_policy"`
}

const (
	defaultSystemPrompt = "Ты — консультант мебельного магазина. Отвечай кратко и по делу, " +
		"помогай подобрать мебель и отвечай на вопросы о товарах."
	defaultGreeting       = "Здравствуйте! Чем могу помочь с подбором мебели?"
	defaultNoResults      = "К сожалению, ничего не нашлось. Попробуйте описать товар иначе."
	defaultEscalationCopy = "Передаю ваш вопрос менеджеру, он свяжется с вами в ближайшее время."
)

// SystemPromptOrDefault returns the tenant's system prompt or the built-in one.
func (c *Config) SystemPromptOrDefault() string {
	if c != nil && c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return defaultSystemPrompt
}

// GreetingOrDefault returns the tenant's greeting or the built-in one.
func (c *Config) GreetingOrDefault() string {
	if c != nil && c.Greeting != "" {
		return c.Greeting
	}
	return defaultGreeting
}

// NoResultsOrDefault returns the tenant's empty-result copy or the built-in one.
func (c *Config) NoResultsOrDefault() string {
	if c != nil && c.NoResults != "" {
		return c.NoResults
	}
	return defaultNoResults
}

// EscalationCopyOrDefault returns the tenant's escalation acknowledgement
// copy, with the manager contact appended when configured.
func (c *Config) EscalationCopyOrDefault() string {
	copyText := defaultEscalationCopy
	if c != nil && c.EscalationCopy != "" {
		copyText = c.EscalationCopy
	}
	if c != nil && c.ManagerContact != "" {
		copyText += "\nКонтакт менеджера: " + c.ManagerContact
	}
	return copyText
}
