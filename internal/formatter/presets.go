package formatter

import "fmt"

// Preset represents a template preset with name, template string, and description.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// PresetRegistry manages template presets.
type PresetRegistry interface {
	// Get returns a preset by name.
	Get(name string) (*Preset, error)

	// List returns all available presets.
	List() []Preset

	// Register adds a new preset.
	Register(preset Preset) error
}

// presetRegistry implements PresetRegistry interface.
type presetRegistry struct {
	presets map[string]Preset
	order   []string
}

// NewPresetRegistry creates a new preset registry with all default presets.
func NewPresetRegistry() PresetRegistry {
	registry := &presetRegistry{
		presets: make(map[string]Preset),
	}
	registry.registerDefaults()
	return registry
}

func (pr *presetRegistry) registerDefaults() {
	presets := []Preset{
		{
			Name:        "compact",
			Template:    "[${unread-count}] ${latest-title}",
			Description: "Unread count and latest title",
		},
		{
			Name:        "detailed",
			Template:    "${unread-count} unread, ${unseen-count} new, ${total-count} total | Latest: ${latest-title}",
			Description: "All counters and latest title",
		},
		{
			Name:        "json",
			Template:    `{"total":${total-count},"unread":${unread-count},"unseen":${unseen-count}}`,
			Description: "JSON counters for programmatic consumption",
		},
		{
			Name:        "count-only",
			Template:    "${unread-count}",
			Description: "Only unread count",
		},
	}
	for _, preset := range presets {
		pr.presets[preset.Name] = preset
		pr.order = append(pr.order, preset.Name)
	}
}

// Get returns a preset by name, or an error if not found.
func (pr *presetRegistry) Get(name string) (*Preset, error) {
	preset, ok := pr.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset not found: %s", name)
	}
	return &preset, nil
}

// List returns all available presets in registration order.
func (pr *presetRegistry) List() []Preset {
	result := make([]Preset, 0, len(pr.order))
	for _, name := range pr.order {
		result = append(result, pr.presets[name])
	}
	return result
}

// Register adds a new preset or overwrites an existing one.
func (pr *presetRegistry) Register(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if preset.Template == "" {
		return fmt.Errorf("preset template cannot be empty")
	}
	if _, exists := pr.presets[preset.Name]; !exists {
		pr.order = append(pr.order, preset.Name)
	}
	pr.presets[preset.Name] = preset
	return nil
}

// Resolve returns the template of a preset, or value itself when it names no
// preset.
func Resolve(registry PresetRegistry, value string) string {
	if preset, err := registry.Get(value); err == nil {
		return preset.Template
	}
	return value
}
