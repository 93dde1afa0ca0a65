package metadata

// Model describes a model a provider can be pinned to.
type Model struct {
	ID       string
	Label    string
	Provider string
}

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

var GeminiModels = []Model{
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", Provider: "gemini"},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", Provider: "gemini"},
	{ID: "gemini-2.0-flash-exp", Label: "Gemini 2.0 Flash (experimental)", Provider: "gemini"},
}

var GroqModels = []Model{
	{ID: "llama-3.3-70b-versatile", Label: "Llama 3.3 70B Versatile", Provider: "groq"},
	{ID: "llama-3.1-8b-instant", Label: "Llama 3.1 8B Instant", Provider: "groq"},
}

// Models returns every known model, gemini first.
func Models() []Model {
	out := make([]Model, 0, len(GeminiModels)+len(GroqModels))
	out = append(out, GeminiModels...)
	return append(out, GroqModels...)
}

// Lookup finds a known model by id. Unknown ids are still usable; they are
// simply not listed.
func Lookup(id string) (Model, bool) {
	for _, m := range Models() {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
