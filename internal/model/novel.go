package model

// DefaultStatus is applied to NovelDetails saved without a status.
const DefaultStatus = "In-Progress"

// Rating bounds for NovelOpinion.
const (
	MinRating = 0
	MaxRating = 5
)

type Novel struct {
	ID           int64         `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Link         string        `json:"link" db:"link"`
	Genre        string        `json:"genre" db:"genre"`
	OriginalName *string       `json:"originalName" db:"original_name"`
	Details      *NovelDetails `json:"novelDetails,omitempty" db:"-"`
	Opinion      *NovelOpinion `json:"novelOpinion,omitempty" db:"-"`
}

// NovelDetails shares its primary key with the owning Novel.
type NovelDetails struct {
	ID                        int64  `json:"-" db:"id"`
	Description               string `json:"description" db:"description"`
	McName                    string `json:"mcName" db:"mc_name"`
	Tags                      string `json:"tags" db:"tags"`
	SpecialCharacteristicOfMc string `json:"specialCharacteristicOfMc" db:"special_characteristic_of_mc"`
	Status                    string `json:"status" db:"status"`
	TotalChapters             int    `json:"totalChapters" db:"total_chapters"`
	AddedOn                   int64  `json:"addedOn" db:"added_on"`
	LastUpdatedOn             int64  `json:"lastUpdatedOn" db:"last_updated_on"`
}

// NovelOpinion shares its primary key with the owning Novel.
type NovelOpinion struct {
	ID                int64  `json:"-" db:"id"`
	Rating            *int   `json:"rating" db:"rating"`
	ChaptersRead      int    `json:"chaptersRead" db:"chapters_read"`
	Favorite          bool   `json:"favorite" db:"favorite"`
	WorthToContinue   bool   `json:"worthToContinue" db:"worth_to_continue"`
	ChaptersFrequency string `json:"chaptersFrequency" db:"chapters_frequency"`
}

// Attach points the owned records at the novel's id.
func (n *Novel) Attach() {
	if n.Details != nil {
		n.Details.ID = n.ID
	}
	if n.Opinion != nil {
		n.Opinion.ID = n.ID
	}
}
