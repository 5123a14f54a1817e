package personality

// Preset captures one of the built-in companion personalities exposed to the
// frontend. Any personality string outside this list is treated as a custom
// free-text trait description.
type Preset struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Trait string `json:"trait"`
}

// Presets returns the built-in personality list.
func Presets() []Preset {
	return []Preset{
		{ID: "default", Label: "Default", Trait: "empathetic and supportive"},
		{ID: "cheerful", Label: "Cheerful", Trait: "cheerful, optimistic, and bubbly"},
		{ID: "shy", Label: "Shy", Trait: "shy, gentle, and easily flustered in a cute way"},
		{ID: "intellectual", Label: "Intellectual", Trait: "intellectual, curious, and thoughtful"},
	}
}

// TraitFor resolves the trait description for a personality identifier.
// Unknown identifiers are returned verbatim as a custom trait.
func TraitFor(id string) string {
	for _, p := range Presets() {
		if p.ID == id {
			return p.Trait
		}
	}
	return id
}

// Voice describes a prebuilt speech-synthesis voice.
type Voice struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Voices lists the prebuilt voices selectable in settings.
func Voices() []Voice {
	return []Voice{
		{Name: "Zephyr", Label: "Zephyr (Default)"},
		{Name: "Kore", Label: "Kore"},
		{Name: "Puck", Label: "Puck"},
		{Name: "Charon", Label: "Charon"},
		{Name: "Fenrir", Label: "Fenrir"},
	}
}
