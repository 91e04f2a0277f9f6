package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/domain"
)

// ─── Request Types ──────────────────────────────────────────────────────────

type createTaskRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Kind         domain.TaskKind   `json:"kind"`
	Color        string            `json:"color"`
	WeeklyTarget *int              `json:"weekly_target"`
	Frequency    *domain.Frequency `json:"frequency"`
	Reminders    []domain.Reminder `json:"reminders"`
}

// editTaskRequest mirrors store.TaskUpdate; omitted fields stay unchanged.
// Streak, completion dates, points, ID and created-at are ignored.
type editTaskRequest struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Kind         *domain.TaskKind   `json:"kind"`
	Color        *string            `json:"color"`
	WeeklyTarget *int               `json:"weekly_target"`
	Frequency    *domain.Frequency  `json:"frequency"`
	Reminders    *[]domain.Reminder `json:"reminders"`
}

type toggleRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
}

type toggleResponse struct {
	Task        domain.Task     `json:"task"`
	Completed   bool            `json:"completed"`
	TotalPoints int             `json:"total_points"`
	Rewards     []domain.Reward `json:"rewards"`
	Version     int64           `json:"version"`
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	kind := domain.TaskKind(r.URL.Query().Get("kind"))
	if kind == "" {
		writeJSON(w, http.StatusOK, snap.Tasks)
		return
	}
	if err := domain.ValidateKind(kind); err != nil {
		s.writeStoreError(w, err)
		return
	}

	tasks := []domain.Task{}
	for _, t := range snap.Tasks {
		if t.Kind == kind {
			tasks = append(tasks, t)
		}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, ok := s.store.Snapshot().Task(id)
	if !ok {
		s.writeStoreError(w, &domain.NotFoundError{ID: id})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	task, _, err := s.store.AddTask(store.NewTask{
		Title:        req.Title,
		Description:  req.Description,
		Kind:         req.Kind,
		Color:        req.Color,
		WeeklyTarget: req.WeeklyTarget,
		Frequency:    req.Frequency,
		Reminders:    req.Reminders,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req editTaskRequest
	if err := decodePartial(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	snap, err := s.store.EditTask(id, store.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Kind:         req.Kind,
		Color:        req.Color,
		WeeklyTarget: req.WeeklyTarget,
		Frequency:    req.Frequency,
		Reminders:    req.Reminders,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	task, _ := snap.Task(id)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteTask(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	day, err := s.toggleDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.store.ToggleDay(id, day)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	task, _ := snap.Task(id)
	writeJSON(w, http.StatusOK, toggleResponse{
		Task:        task,
		Completed:   task.CompletedOn(day),
		TotalPoints: snap.TotalPoints,
		Rewards:     snap.Rewards,
		Version:     snap.Version,
	})
}

// toggleDate resolves the optional request date. An empty date means today
// on the store clock.
func (s *Server) toggleDate(raw string) (domain.DateKey, error) {
	if raw == "" {
		return s.store.Today(), nil
	}
	day, err := domain.ParseDate(raw)
	if err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD: %q", raw)
	}
	return day, nil
}
