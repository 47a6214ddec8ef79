package blocks

import "sitepages/internal/domain"

// Deps carries the collaborators needed by dynamic block types.
type Deps struct {
	Collections domain.CollectionSource
}

// DefaultRegistry returns a registry with every built-in block type.
func DefaultRegistry(deps Deps) *Registry {
	reg := NewRegistry()
	RegisterDefaults(reg, deps)
	return reg
}

// RegisterDefaults registers the built-in block types on reg.
// Dynamic types are only registered when a collection source is given.
func RegisterDefaults(reg *Registry, deps Deps) {
	reg.MustRegister(heroDescriptor())
	reg.MustRegister(textDescriptor())
	reg.MustRegister(featuresDescriptor())
	reg.MustRegister(imageTextDescriptor())
	reg.MustRegister(timelineDescriptor())
	reg.MustRegister(ctaDescriptor())
	reg.MustRegister(numberedCardsDescriptor())
	reg.MustRegister(checklistDescriptor())
	reg.MustRegister(stepsDescriptor())

	if deps.Collections == nil {
		return
	}
	reg.MustRegister(NewDynamicDescriptor(DynamicList{
		Type:         domain.BlockTypeDynamicNews,
		Label:        "Latest news",
		Entity:       "news",
		DefaultTitle: "Latest news",
		BasePath:     "/news",
		AllLabel:     "All news",
	}, deps.Collections))
	reg.MustRegister(NewDynamicDescriptor(DynamicList{
		Type:         domain.BlockTypeDynamicProjects,
		Label:        "Recent projects",
		Entity:       "projects",
		DefaultTitle: "Recent projects",
		BasePath:     "/projects",
		AllLabel:     "All projects",
	}, deps.Collections))
}
