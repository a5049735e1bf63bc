package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/mapper"
	"github.com/theLastOfCats/novel-library-server/internal/model"
	"github.com/theLastOfCats/novel-library-server/internal/service"
)

const maxBodyBytes = 1 << 20

type NovelHandler struct {
	Service *service.NovelService
}

func (h *NovelHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.GetNovelsCount(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

func (h *NovelHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Novel library")
}

// Search looks novels up by genre or, when no genre is given, by name.
func (h *NovelHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	genre := strings.TrimSpace(q.Get("genre"))

	var (
		novels   []model.Novel
		err      error
		notFound string
	)
	switch {
	case genre != "":
		novels, err = h.Service.FindNovelByGenre(r.Context(), genre)
		notFound = "No novels found for genre: " + genre
	case name != "":
		novels, err = h.Service.FindNovelByName(r.Context(), name)
		notFound = "No novels found for name: " + name
	default:
		JSONError(w, "At least one search parameter (name or genre) must be provided", http.StatusBadRequest)
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if len(novels) == 0 {
		JSONError(w, notFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTOList(novels))
}

func (h *NovelHandler) List(w http.ResponseWriter, r *http.Request) {
	novels, err := h.Service.GetAllNovels(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTOList(novels))
}

func (h *NovelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := h.Service.GetNovelByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTO(n))
}

func (h *NovelHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req *mapper.NovelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.Service.AddNovelIfNotExists(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if subject, ok := GetSubject(r); ok {
		log.WithFields(log.Fields{"id": id, "subject": subject}).Debug("novel added by authenticated caller")
	}
	writeText(w, http.StatusCreated, fmt.Sprintf("Novel added with id : %d", id))
}

func (h *NovelHandler) AddBulk(w http.ResponseWriter, r *http.Request) {
	var reqs []mapper.NovelRequest
	if !decodeBody(w, r, &reqs) {
		return
	}

	res, err := h.Service.AddNovelsInBulk(r.Context(), reqs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Update applies the name, link, originalName and genre query parameters to the novel.
func (h *NovelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	n, err := h.Service.UpdateNovel(r.Context(), id, service.NovelUpdate{
		Name:         q.Get("name"),
		Link:         q.Get("link"),
		OriginalName: q.Get("originalName"),
		Genre:        q.Get("genre"),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTO(n))
}

func (h *NovelHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req *mapper.DetailsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := h.Service.UpdateNovelDetails(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTO(n))
}

func (h *NovelHandler) UpdateOpinion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req *mapper.OpinionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := h.Service.UpdateNovelOpinion(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapper.ToDTO(n))
}

func (h *NovelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteNovel(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		JSONError(w, "Novel id must be a positive number", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			JSONError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			JSONError(w, "Request body must not be empty", http.StatusBadRequest)
		default:
			JSONError(w, "Invalid request body", http.StatusBadRequest)
		}
		return false
	}
	return true
}
