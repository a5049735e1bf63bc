package mapper

import "time"

// NovelRequest is the body accepted when adding a novel.
type NovelRequest struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Link         string          `json:"link" validate:"required,max=512"`
	Genre        string          `json:"genre" validate:"max=255"`
	OriginalName *string         `json:"originalName" validate:"omitempty,max=255"`
	NovelDetails *DetailsRequest `json:"novelDetails"`
	NovelOpinion *OpinionRequest `json:"novelOpinion"`
}

type DetailsRequest struct {
	Description               string `json:"description"`
	McName                    string `json:"mcName" validate:"max=255"`
	Tags                      string `json:"tags"`
	SpecialCharacteristicOfMc string `json:"specialCharacteristicOfMc"`
	Status                    string `json:"status" validate:"max=64"`
	TotalChapters             int    `json:"totalChapters" validate:"min=0"`
}

type OpinionRequest struct {
	Rating            *int   `json:"rating" validate:"omitempty,min=0,max=5"`
	ChaptersRead      int    `json:"chaptersRead" validate:"min=0"`
	Favorite          bool   `json:"favorite"`
	WorthToContinue   bool   `json:"worthToContinue"`
	ChaptersFrequency string `json:"chaptersFrequency" validate:"max=255"`
}

// NovelDTO is the representation returned to clients.
type NovelDTO struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Link         string      `json:"link"`
	Genre        string      `json:"genre"`
	OriginalName *string     `json:"originalName"`
	NovelDetails *DetailsDTO `json:"novelDetails,omitempty"`
	NovelOpinion *OpinionDTO `json:"novelOpinion,omitempty"`
}

type DetailsDTO struct {
	Description               string    `json:"description"`
	McName                    string    `json:"mcName"`
	Tags                      string    `json:"tags"`
	SpecialCharacteristicOfMc string    `json:"specialCharacteristicOfMc"`
	Status                    string    `json:"status"`
	TotalChapters             int       `json:"totalChapters"`
	AddedOn                   time.Time `json:"addedOn"`
	LastUpdatedOn             time.Time `json:"lastUpdatedOn"`
}

type OpinionDTO struct {
	Rating            *int   `json:"rating"`
	ChaptersRead      int    `json:"chaptersRead"`
	Favorite          bool   `json:"favorite"`
	WorthToContinue   bool   `json:"worthToContinue"`
	ChaptersFrequency string `json:"chaptersFrequency"`
}

// BulkResult reports the outcome of a bulk add.
type BulkResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
