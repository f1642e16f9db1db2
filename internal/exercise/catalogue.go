package exercise

// Info describes one supported exercise type.
type Info struct {
	Type        Type     `json:"type"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Coverage    Coverage `json:"coverage"`
}

// Catalogue lists every exercise type with its description and rule coverage.
func Catalogue() []Info {
	infos := make([]Info, 0, len(AllTypes))
	for _, t := range AllTypes {
		infos = append(infos, Info{
			Type:        t,
			DisplayName: t.DisplayName(),
			Description: t.Description(),
			Coverage:    t.Coverage(),
		})
	}
	return infos
}
