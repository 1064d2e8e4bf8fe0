package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
	"github.com/replydesk/replydesk/internal/faqxlsx"
)

const maxImportBytes = 10 << 20

type faqRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	ParentID *int64 `json:"parent_id"`
}

// listFAQs returns the FAQ catalogue as a two-level tree: top-level
// entries with their sub-questions nested underneath.
func (s *Server) listFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := s.faqs.List(r.Context())
	if err != nil {
		s.logger.Error("list faqs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, buildTree(faqs))
}

func buildTree(faqs []bot.FAQ) []bot.FAQNode {
	nodes := make([]bot.FAQNode, 0)
	index := make(map[int64]int)
	for _, f := range faqs {
		if f.ParentID != nil {
			continue
		}
		index[f.ID] = len(nodes)
		nodes = append(nodes, bot.FAQNode{
			ID:       f.ID,
			Question: f.Question,
			Answer:   f.Answer,
			SubFAQs:  []bot.FAQ{},
		})
	}
	for _, f := range faqs {
		if f.ParentID == nil {
			continue
		}
		if i, ok := index[*f.ParentID]; ok {
			nodes[i].SubFAQs = append(nodes[i].SubFAQs, f)
		}
	}
	return nodes
}

func (s *Server) createFAQ(w http.ResponseWriter, r *http.Request) {
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	req.Answer = strings.TrimSpace(req.Answer)
	if req.Question == "" || req.Answer == "" {
		writeError(w, http.StatusBadRequest, "question and answer are required")
		return
	}
	faq, err := s.faqs.Create(r.Context(), req.Question, req.Answer, req.ParentID)
	switch {
	case errors.Is(err, bot.ErrInvalidParent):
		writeError(w, http.StatusBadRequest, "parent must be a top-level question")
		return
	case errors.Is(err, bot.ErrNotFound):
		writeError(w, http.StatusBadRequest, "parent question does not exist")
		return
	case err != nil:
		s.logger.Error("create faq failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, faq)
}

func (s *Server) updateFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "faq_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faq id")
		return
	}
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	req.Answer = strings.TrimSpace(req.Answer)
	if req.Question == "" || req.Answer == "" {
		writeError(w, http.StatusBadRequest, "question and answer are required")
		return
	}
	err = s.faqs.Update(r.Context(), id, req.Question, req.Answer)
	switch {
	case errors.Is(err, bot.ErrNotFound):
		writeError(w, http.StatusNotFound, "faq not found")
		return
	case err != nil:
		s.logger.Error("update faq failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "faq_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid faq id")
		return
	}
	err = s.faqs.Delete(r.Context(), id)
	switch {
	case errors.Is(err, bot.ErrNotFound):
		writeError(w, http.StatusNotFound, "faq not found")
		return
	case err != nil:
		s.logger.Error("delete faq failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	values, err := s.setStore.GetAll(r.Context(), bot.SettingKeys)
	if err != nil {
		s.logger.Error("get settings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make(map[string]string, len(bot.SettingKeys))
	for _, key := range bot.SettingKeys {
		out[key] = values[key]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no settings provided")
		return
	}
	for key := range req {
		if !isKnownSetting(key) {
			writeError(w, http.StatusBadRequest, "unknown setting: "+key)
			return
		}
	}
	for key, value := range req {
		if err := s.setStore.Set(r.Context(), key, value); err != nil {
			s.logger.Error("set setting failed", zap.String("key", key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}
	if err := s.runtime.Reload(r.Context()); err != nil {
		s.logger.Error("settings reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func isKnownSetting(key string) bool {
	for _, k := range bot.SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// train crawls the given URLs synchronously and reports per-batch counters.
func (s *Server) train(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls are required")
		return
	}
	counters := s.crawler.Run(r.Context(), req.URLs)
	writeJSON(w, http.StatusOK, map[string]int{
		"fetched": counters.Fetched,
		"failed":  counters.Failed,
	})
}

func (s *Server) exportFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := s.faqs.List(r.Context())
	if err != nil {
		s.logger.Error("list faqs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	data, err := faqxlsx.Export(faqs)
	if err != nil {
		s.logger.Error("export faqs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="faqs.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write export failed", zap.Error(err))
	}
}

func (s *Server) importFAQs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := faqxlsx.Import(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable spreadsheet: "+err.Error())
		return
	}
	imported := 0
	for _, row := range rows {
		if _, err := s.faqs.Create(r.Context(), row.Question, row.Answer, row.ParentID); err != nil {
			switch {
			case errors.Is(err, bot.ErrInvalidParent), errors.Is(err, bot.ErrNotFound):
				writeError(w, http.StatusBadRequest, "invalid parent for question: "+row.Question)
			default:
				s.logger.Error("import faq failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		imported++
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}
