package model

// InteractionDatabase is the contents of interactions/interaction-db.json.
type InteractionDatabase struct {
	Version      string        `json:"version"`
	CreatedAt    string        `json:"created_at"`
	Interactions []Interaction `json:"interactions"`
}

type Interaction struct {
	ID              string              `json:"id"`
	Type            string              `json:"type"`
	Drugs           []InteractingDrug   `json:"drugs"`
	Severity        InteractionSeverity `json:"severity"`
	Recommendations []string            `json:"recommendations"`
	Management      InteractionAction   `json:"management"`
}

type InteractingDrug struct {
	Name        string `json:"name"`
	GenericName string `json:"generic_name"`
	Category    string `json:"category"`
}

type InteractionSeverity struct {
	Level     string `json:"level"`
	LevelName string `json:"level_name"`
	LevelCode int    `json:"level_code"`
	Color     string `json:"color"`
}

type InteractionAction struct {
	Action     string   `json:"action"`
	Monitoring []string `json:"monitoring"`
}

func EmptyInteractionDatabase() *InteractionDatabase {
	d := &InteractionDatabase{}
	d.Normalize()
	return d
}

func (d *InteractionDatabase) Normalize() {
	if d.Interactions == nil {
		d.Interactions = []Interaction{}
	}
}
