package mapper

import (
	"strings"
	"time"

	"github.com/theLastOfCats/novel-library-server/internal/model"
)

// ToEntity converts an add request into a Novel with its owned records. Text fields are trimmed.
func ToEntity(req *NovelRequest) *model.Novel {
	if req == nil {
		return nil
	}
	n := &model.Novel{
		Name:         strings.TrimSpace(req.Name),
		Link:         strings.TrimSpace(req.Link),
		Genre:        strings.TrimSpace(req.Genre),
		OriginalName: trimmedPtr(req.OriginalName),
		Details:      DetailsToEntity(req.NovelDetails),
		Opinion:      OpinionToEntity(req.NovelOpinion),
	}
	n.Attach()
	return n
}

func DetailsToEntity(req *DetailsRequest) *model.NovelDetails {
	if req == nil {
		return nil
	}
	return &model.NovelDetails{
		Description:               req.Description,
		McName:                    strings.TrimSpace(req.McName),
		Tags:                      req.Tags,
		SpecialCharacteristicOfMc: req.SpecialCharacteristicOfMc,
		Status:                    strings.TrimSpace(req.Status),
		TotalChapters:             req.TotalChapters,
	}
}

func OpinionToEntity(req *OpinionRequest) *model.NovelOpinion {
	if req == nil {
		return nil
	}
	o := &model.NovelOpinion{
		ChaptersRead:      req.ChaptersRead,
		Favorite:          req.Favorite,
		WorthToContinue:   req.WorthToContinue,
		ChaptersFrequency: strings.TrimSpace(req.ChaptersFrequency),
	}
	if req.Rating != nil {
		r := *req.Rating
		o.Rating = &r
	}
	return o
}

func ToDTO(n *model.Novel) NovelDTO {
	dto := NovelDTO{
		ID:           n.ID,
		Name:         n.Name,
		Link:         n.Link,
		Genre:        n.Genre,
		OriginalName: n.OriginalName,
	}
	if d := n.Details; d != nil {
		dto.NovelDetails = &DetailsDTO{
			Description:               d.Description,
			McName:                    d.McName,
			Tags:                      d.Tags,
			SpecialCharacteristicOfMc: d.SpecialCharacteristicOfMc,
			Status:                    d.Status,
			TotalChapters:             d.TotalChapters,
			AddedOn:                   fromMillis(d.AddedOn),
			LastUpdatedOn:             fromMillis(d.LastUpdatedOn),
		}
	}
	if o := n.Opinion; o != nil {
		dto.NovelOpinion = &OpinionDTO{
			Rating:            o.Rating,
			ChaptersRead:      o.ChaptersRead,
			Favorite:          o.Favorite,
			WorthToContinue:   o.WorthToContinue,
			ChaptersFrequency: o.ChaptersFrequency,
		}
	}
	return dto
}

func ToDTOList(novels []model.Novel) []NovelDTO {
	dtos := make([]NovelDTO, 0, len(novels))
	for i := range novels {
		dtos = append(dtos, ToDTO(&novels[i]))
	}
	return dtos
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
