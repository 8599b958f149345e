// Package prompt assembles the system prompt sent with every model request.
package prompt

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/petasbytes/form-agent/schema"
	"github.com/petasbytes/form-agent/session"
)

const rules = `<rules>
Read before every response:

1. ALWAYS use tools. Never put schema JSON in plain prose; every change goes through a tool call.

2. MINIMAL EDITS. Prefer add_property, update_property and remove_property. Use replace_subtree only when restructuring several levels at once.

3. LANGUAGE. Reply in the user's language. Default: %[1]s.

4. CLARIFICATION. When intent is ambiguous (for example "dropdown" can mean an enum, an autocomplete or an API-backed select), call request_clarification and stop. No other tool call in the same response will run.

5. CONFIRMATION. After a successful tool call, confirm the change in one sentence.

6. REJECTIONS. A failed tool call leaves the form unchanged. Read the error, fix the arguments and try again.

7. PATHS. Paths are dotted property paths such as "address.street"; "" is the root object.

8. UI OPTIONS. After every schema edit decide whether UI options are warranted and pass them in the same call via uiOptions.
</rules>`

const uiHints = `<ui_hints>
UI options by field type:
- email: { "ui:widget": "email" }
- long text: { "ui:widget": "textarea", "ui:options": { "rows": 4 } }
- date: { "ui:widget": "date" }
- phone: { "ui:widget": "tel" }
- autocomplete or combobox: { "ui:widget": "autocomplete" }
- rating: { "ui:widget": "rating" }
- password: { "ui:widget": "password" }
- address group: { "ui:group": true }
</ui_hints>`

const vocabularyDE = `<vocabulary>
German terms:
- "Pflichtfeld": required: true
- "Datumsfeld": type string, format date
- "E-Mail": type string, format email
- "Telefonnummer": type string, format tel or a pattern
- "Mehrfachauswahl": type array, uniqueItems true, enum items
- "Abschnitt" / "Gruppe": nested object property
- "Adresseingabe": object with street, houseNumber, postalCode, city, country
- "Freitext": type string with a textarea widget
</vocabulary>`

// Language returns the display name used in the prompt.
func Language(lang string) string {
	if session.NormalizeLanguage(lang) == session.LanguageDE {
		return "German"
	}
	return "English"
}

// Build renders the system prompt for doc. The document is embedded verbatim
// so the model always edits against the live version.
func Build(doc schema.Document, language string) (string, error) {
	lang := Language(language)

	var b strings.Builder
	b.WriteString("<role>\n")
	b.WriteString("You are an expert assistant for building JSON Schema + UI Schema form definitions.\n")
	fmt.Fprintf(&b, "You communicate in %s and respond concisely.\n", lang)
	b.WriteString("</role>\n\n")
	fmt.Fprintf(&b, rules, lang)
	b.WriteString("\n\n")
	b.WriteString(uiHints)
	if lang == "German" {
		b.WriteString("\n\n")
		b.WriteString(vocabularyDE)
	}

	state, err := json.MarshalIndent(map[string]any{
		"jsonSchema": doc.JSONSchema,
		"uiSchema":   doc.UISchema,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode current schema: %w", err)
	}
	fmt.Fprintf(&b, "\n\n<current_schema version=\"%d\">\n%s\n</current_schema>", doc.Version, state)
	return b.String(), nil
}
