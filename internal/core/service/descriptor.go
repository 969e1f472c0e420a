package service

// Layer describes the architectural slice an engine belongs to.
type Layer string

const (
	LayerEngine   Layer = "engine"
	LayerData     Layer = "data"
	LayerExternal Layer = "external"
)

// Descriptor advertises an engine's placement and capabilities. It is
// optional and does not change runtime behavior, but lets operators and
// tests reason about the wired engines consistently.
type Descriptor struct {
	Name         string
	Domain       string
	Layer        Layer
	Capabilities []string
}

// WithCapabilities returns a copy of the descriptor with additional
// capabilities appended.
func (d Descriptor) WithCapabilities(caps ...string) Descriptor {
	if len(caps) == 0 {
		return d
	}
	combined := make([]string, 0, len(d.Capabilities)+len(caps))
	combined = append(combined, d.Capabilities...)
	combined = append(combined, caps...)
	d.Capabilities = combined
	return d
}
